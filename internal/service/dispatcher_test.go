package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

var sweepNow = time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)

func seedReminder(s *memStore, userID int64, problemName string, dueAt time.Time) *entities.Reminder {
	p := entities.NewProblem(userID, problemName, entities.DifficultyEasy, dueAt, sweepNow)
	s.problems[p.ID] = p

	r := entities.NewReminder(userID, p.ID, dueAt, entities.ReminderSourceInitial, sweepNow)
	s.reminders[r.ID] = r
	return r
}

func newTestDispatcher(store *memStore, sender NotificationSender, cfg DispatcherConfig) *DispatcherService {
	d := NewDispatcherService(store.reminderRepo(), sender, cfg, zap.NewNop())
	d.now = func() time.Time { return sweepNow }
	return d
}

func TestSweep_OnlyPastDue(t *testing.T) {
	store := newMemStore()
	past1 := seedReminder(store, 1, "Two Sum", sweepNow.Add(-48*time.Hour))
	past2 := seedReminder(store, 2, "Word Ladder", sweepNow.Add(-time.Minute))
	future := seedReminder(store, 1, "Jump Game", sweepNow.Add(time.Hour))

	sender := &fakeSender{}
	res, err := newTestDispatcher(store, sender, DispatcherConfig{}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SweepResult{Selected: 2, Notified: 2, Marked: 2}, res)
	assert.ElementsMatch(t, []string{past1.ProblemID, past2.ProblemID}, sender.problemIDs())

	assert.True(t, store.reminders[past1.ID].IsSent)
	assert.Equal(t, sweepNow, *store.reminders[past1.ID].SentAt)
	assert.True(t, store.reminders[past2.ID].IsSent)
	assert.False(t, store.reminders[future.ID].IsSent)
	assert.Nil(t, store.reminders[future.ID].SentAt)
}

func TestSweep_MessageAndMeta(t *testing.T) {
	store := newMemStore()
	due := sweepNow.Add(-time.Hour)
	r := seedReminder(store, 7, "Two Sum", due)

	sender := &fakeSender{}
	_, err := newTestDispatcher(store, sender, DispatcherConfig{}).Sweep(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(7), sender.sent[0].UserID)
	assert.Contains(t, sender.sent[0].Message, "Two Sum")
	assert.Equal(t, entities.NotificationMeta{DueAt: due, ProblemID: r.ProblemID}, sender.sent[0].Meta)
}

func TestSweep_EmptyIsNoop(t *testing.T) {
	store := newMemStore()
	seedReminder(store, 1, "Later", sweepNow.Add(time.Hour))

	res, err := newTestDispatcher(store, &fakeSender{}, DispatcherConfig{}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SweepResult{}, res)
	assert.Empty(t, store.markCalls)
}

func TestSweep_FailedSendStillMarked(t *testing.T) {
	store := newMemStore()
	ok := seedReminder(store, 1, "ok", sweepNow.Add(-time.Hour))
	bad := seedReminder(store, 2, "bad", sweepNow.Add(-time.Hour))

	sender := &fakeSender{failFor: map[int64]bool{2: true}}
	res, err := newTestDispatcher(store, sender, DispatcherConfig{}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Notified)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, int64(2), res.Marked)
	assert.True(t, store.reminders[ok.ID].IsSent)
	assert.True(t, store.reminders[bad.ID].IsSent)
}

func TestSweep_HangingSenderDoesNotStallBatch(t *testing.T) {
	store := newMemStore()
	slow := seedReminder(store, 1, "slow", sweepNow.Add(-time.Hour))
	fast := seedReminder(store, 2, "fast", sweepNow.Add(-time.Hour))

	sender := &fakeSender{hangFor: map[int64]bool{1: true}}
	d := newTestDispatcher(store, sender, DispatcherConfig{SendTimeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := d.Sweep(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Notified)
	assert.True(t, store.reminders[slow.ID].IsSent)
	assert.True(t, store.reminders[fast.ID].IsSent)
}

func TestSweep_Batches(t *testing.T) {
	store := newMemStore()
	for i := range 5 {
		seedReminder(store, int64(i+1), "p", sweepNow.Add(-time.Duration(i+1)*time.Minute))
	}

	sender := &fakeSender{}
	res, err := newTestDispatcher(store, sender, DispatcherConfig{BatchSize: 2}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Selected)
	assert.Equal(t, int64(5), res.Marked)
	assert.Len(t, store.markCalls, 3)
	assert.Len(t, sender.sent, 5)
}

func TestDispatchAndMark_SkipsMalformedRow(t *testing.T) {
	store := newMemStore()
	good := seedReminder(store, 1, "good", sweepNow.Add(-time.Hour))
	broken := seedReminder(store, 1, "broken", sweepNow.Add(-time.Hour))

	d := newTestDispatcher(store, &fakeSender{}, DispatcherConfig{})
	batch, err := d.SelectDue(context.Background(), sweepNow)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for _, row := range batch {
		if row.ReminderID == broken.ID {
			row.UserID = 0
		}
	}

	res, err := d.DispatchAndMark(context.Background(), batch, sweepNow)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Notified)
	assert.True(t, store.reminders[good.ID].IsSent)
	assert.True(t, store.reminders[broken.ID].IsSent)
}

func TestDispatchAndMark_Idempotent(t *testing.T) {
	store := newMemStore()
	r := seedReminder(store, 1, "p", sweepNow.Add(-time.Hour))

	d := newTestDispatcher(store, &fakeSender{}, DispatcherConfig{})
	batch, err := d.SelectDue(context.Background(), sweepNow)
	require.NoError(t, err)

	first, err := d.DispatchAndMark(context.Background(), batch, sweepNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Marked)

	// An overlapping sweep holding the same batch changes nothing.
	second, err := d.DispatchAndMark(context.Background(), batch, sweepNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Marked)
	assert.Equal(t, sweepNow, *store.reminders[r.ID].SentAt)
}

func TestDispatchAndMark_MarkFailure(t *testing.T) {
	store := newMemStore()
	seedReminder(store, 1, "p", sweepNow.Add(-time.Hour))
	store.failMarkSent = errors.New("connection refused")

	_, err := newTestDispatcher(store, &fakeSender{}, DispatcherConfig{}).Sweep(context.Background())

	assert.ErrorContains(t, err, "mark reminders sent")
}

func TestDispatchAndMark_MarksAfterCancellation(t *testing.T) {
	store := newMemStore()
	r := seedReminder(store, 1, "p", sweepNow.Add(-time.Hour))

	d := newTestDispatcher(store, &fakeSender{}, DispatcherConfig{})
	batch, err := d.SelectDue(context.Background(), sweepNow)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.DispatchAndMark(ctx, batch, sweepNow)
	require.NoError(t, err)
	assert.True(t, store.reminders[r.ID].IsSent)
}
