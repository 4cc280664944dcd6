package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

func TestCreateProblem_DefaultSchedule(t *testing.T) {
	f := newSchedulerFixture(t)

	p, reminders, err := f.problems.Create(context.Background(), 1, CreateProblemInput{
		Name:       "Course Schedule",
		Difficulty: "medium",
		Tags:       []string{"Graphs", "topo-sort", "graphs"},
		DateSolved: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.DifficultyMedium, p.Difficulty)
	assert.Equal(t, []string{"graphs", "topo-sort"}, p.Tags)
	assert.Equal(t, entities.NewPracticeMeta(), p.Practice)

	require.Len(t, reminders, 3)
	stored := f.store.remindersFor(p.ID)
	require.Len(t, stored, 3)

	want := []time.Time{
		time.Date(2025, 9, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 16, 9, 0, 0, 0, time.UTC),
	}
	for i, r := range stored {
		assert.Equal(t, want[i], r.DueAt)
		assert.False(t, r.IsSent)
		assert.Equal(t, entities.ReminderSourceInitial, r.Source)
	}
}

func TestCreateProblem_AutoRemindersDisabled(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()

	off := false
	_, err := f.prefs.Update(ctx, 1, UpdatePreferencesInput{AutoReminders: &off})
	require.NoError(t, err)

	p, reminders, err := f.problems.Create(ctx, 1, CreateProblemInput{
		Name:       "LRU Cache",
		Difficulty: "Medium",
		DateSolved: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Empty(t, reminders)
	assert.Empty(t, f.store.remindersFor(p.ID))
}

func TestCreateProblem_ExplicitRemindersOverride(t *testing.T) {
	f := newSchedulerFixture(t)
	explicit := []time.Time{
		time.Date(2025, 9, 2, 18, 15, 0, 0, time.UTC),
		time.Date(2025, 9, 30, 7, 0, 0, 0, time.UTC),
	}

	p, _, err := f.problems.Create(context.Background(), 1, CreateProblemInput{
		Name:       "Median of Two Sorted Arrays",
		Difficulty: "Hard",
		DateSolved: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Reminders:  explicit,
	})
	require.NoError(t, err)

	stored := f.store.remindersFor(p.ID)
	require.Len(t, stored, 2)
	assert.Equal(t, explicit[0], stored[0].DueAt)
	assert.Equal(t, explicit[1], stored[1].DueAt)
}

func TestCreateProblem_Validation(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	solved := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]CreateProblemInput{
		"difficulty":  {Name: "x", Difficulty: "Legendary", DateSolved: solved},
		"name":        {Name: "", Difficulty: "Easy", DateSolved: solved},
		"date_solved": {Name: "x", Difficulty: "Easy"},
		"reminders": {
			Name: "x", Difficulty: "Easy", DateSolved: solved,
			Reminders: []time.Time{{}},
		},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, _, err := f.problems.Create(ctx, 1, in)

			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}

	assert.Empty(t, f.store.problems)
}

func TestUpdateAndDeleteProblem(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	p := f.createProblem(t, 1)

	name := "Two Sum II"
	tags := []string{"Two-Pointers"}
	updated, err := f.problems.Update(ctx, 1, p.ID, UpdateProblemInput{Name: &name, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, []string{"two-pointers"}, updated.Tags)

	_, err = f.problems.Update(ctx, 2, p.ID, UpdateProblemInput{Name: &name})
	assert.ErrorIs(t, err, entities.ErrNotFound)

	require.NoError(t, f.problems.Delete(ctx, 1, p.ID))
	assert.Empty(t, f.store.remindersFor(p.ID))

	_, err = f.problems.Get(ctx, 1, p.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestListProblems_Filters(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()
	solved := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []CreateProblemInput{
		{Name: "a", Difficulty: "Easy", Tags: []string{"dp"}, DateSolved: solved},
		{Name: "b", Difficulty: "Hard", Tags: []string{"dp"}, DateSolved: solved},
		{Name: "c", Difficulty: "Hard", Tags: []string{"graphs"}, DateSolved: solved},
	} {
		_, _, err := f.problems.Create(ctx, 1, in)
		require.NoError(t, err)
	}

	hard, err := f.problems.List(ctx, 1, entities.ProblemFilter{Difficulty: "hard"})
	require.NoError(t, err)
	assert.Len(t, hard, 2)

	dp, err := f.problems.List(ctx, 1, entities.ProblemFilter{Tag: "dp"})
	require.NoError(t, err)
	assert.Len(t, dp, 2)

	none, err := f.problems.List(ctx, 2, entities.ProblemFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
