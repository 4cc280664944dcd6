package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_InitialDueTimes(t *testing.T) {
	solved := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	got := DefaultPolicy().InitialDueTimes(solved, time.UTC)

	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2025, 9, 4, 9, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2025, 9, 8, 9, 0, 0, 0, time.UTC), got[1])
	assert.Equal(t, time.Date(2025, 9, 16, 9, 0, 0, 0, time.UTC), got[2])
}

func TestPolicy_InitialDueTimesInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+03:00", 3*3600)
	solved := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	got := DefaultPolicy().InitialDueTimes(solved, loc)

	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2025, 9, 4, 9, 0, 0, 0, loc), got[0])
	assert.Equal(t, time.Date(2025, 9, 4, 6, 0, 0, 0, time.UTC), got[0].UTC())
}

func TestPolicy_PlanInitial(t *testing.T) {
	p := DefaultPolicy()
	solved := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	explicit := []time.Time{
		time.Date(2025, 9, 2, 18, 30, 0, 0, time.UTC),
	}

	t.Run("explicit overrides defaults", func(t *testing.T) {
		got := p.PlanInitial(solved, true, explicit, time.UTC)
		assert.Equal(t, explicit, got)
	})

	t.Run("explicit used when auto disabled", func(t *testing.T) {
		got := p.PlanInitial(solved, false, explicit, time.UTC)
		assert.Equal(t, explicit, got)
	})

	t.Run("auto disabled yields none", func(t *testing.T) {
		assert.Empty(t, p.PlanInitial(solved, false, nil, time.UTC))
	})

	t.Run("auto enabled yields defaults", func(t *testing.T) {
		assert.Len(t, p.PlanInitial(solved, true, nil, time.UTC), 3)
	})
}

func TestPolicy_NextDueAt(t *testing.T) {
	p := DefaultPolicy()
	loc := time.FixedZone("UTC-05:00", -5*3600)

	// 02:00 UTC on the 10th is still the 9th in UTC-5.
	now := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)

	got := p.NextDueAt(now, 6, loc)

	assert.Equal(t, time.Date(2025, 3, 15, 9, 0, 0, 0, loc), got)
}

func TestPolicy_CustomShape(t *testing.T) {
	p := Policy{ReviewHour: 20, InitialOffsets: []int{1, 2}}
	solved := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	got := p.InitialDueTimes(solved, time.UTC)

	assert.Equal(t, []time.Time{
		time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC),
	}, got)
}
