package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/revisit/internal/domain/srs"
)

func TestDecodePracticeMeta_Defaults(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null"), []byte("{}")} {
		meta, err := DecodePracticeMeta(raw)
		require.NoError(t, err)
		assert.Equal(t, NewPracticeMeta(), meta)
	}
}

func TestDecodePracticeMeta_Rejects(t *testing.T) {
	cases := map[string]string{
		"ease below floor": `{"ease_factor": 1.1}`,
		"negative attempt": `{"attempt_count": -1, "ease_factor": 2.5}`,
		"bad quality":      `{"ease_factor": 2.5, "quality_score": 9}`,
		"not json":         `{"ease_factor":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePracticeMeta([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestPracticeMeta_EncodeDecode(t *testing.T) {
	meta := NewPracticeMeta()
	now := time.Date(2025, 9, 20, 14, 0, 0, 0, time.UTC)
	meta.Apply(4, now, srs.DefaultPolicy(), time.UTC)

	raw, err := meta.Encode()
	require.NoError(t, err)

	got, err := DecodePracticeMeta(raw)
	require.NoError(t, err)
	assert.Equal(t, meta.AttemptCount, got.AttemptCount)
	assert.Equal(t, *meta.QualityScore, *got.QualityScore)
	assert.True(t, meta.NextDueAt.Equal(*got.NextDueAt))
}

func TestPracticeMeta_Apply(t *testing.T) {
	meta := NewPracticeMeta()
	policy := srs.DefaultPolicy()
	now := time.Date(2025, 9, 20, 14, 0, 0, 0, time.UTC)

	next := meta.Apply(4, now, policy, time.UTC)
	assert.Equal(t, 1, meta.AttemptCount)
	assert.Equal(t, 1, meta.Interval)
	assert.Equal(t, time.Date(2025, 9, 21, 9, 0, 0, 0, time.UTC), next)
	assert.Equal(t, now, *meta.LastAttemptedAt)

	next = meta.Apply(5, now, policy, time.UTC)
	assert.Equal(t, 2, meta.AttemptCount)
	assert.Equal(t, 6, meta.Interval)
	assert.Equal(t, time.Date(2025, 9, 26, 9, 0, 0, 0, time.UTC), next)

	meta.Apply(2, now, policy, time.UTC)
	assert.Equal(t, 3, meta.AttemptCount)
	assert.Equal(t, 1, meta.Interval)
	assert.Equal(t, 2, *meta.QualityScore)
	assert.GreaterOrEqual(t, meta.EaseFactor, srs.MinEaseFactor)
}
