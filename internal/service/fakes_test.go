package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

// memStore backs the fake repositories. WithinTx snapshots it and restores
// the snapshot when fn fails, which is enough to observe rollback.
type memStore struct {
	mu        sync.Mutex
	problems  map[string]*entities.Problem
	reminders map[string]*entities.Reminder
	prefs     map[int64]*entities.UserPreferences

	failReminderCreate error
	failMarkSent       error
	markCalls          [][]string
}

func newMemStore() *memStore {
	return &memStore{
		problems:  map[string]*entities.Problem{},
		reminders: map[string]*entities.Reminder{},
		prefs:     map[int64]*entities.UserPreferences{},
	}
}

func cloneProblem(p *entities.Problem) *entities.Problem {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	return &cp
}

func cloneReminder(r *entities.Reminder) *entities.Reminder {
	cp := *r
	return &cp
}

func (s *memStore) problemRepo() *fakeProblems   { return &fakeProblems{s} }
func (s *memStore) reminderRepo() *fakeReminders { return &fakeReminders{s} }
func (s *memStore) prefsRepo() *fakePrefs        { return &fakePrefs{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	s.mu.Lock()
	problems := make(map[string]*entities.Problem, len(s.problems))
	for k, v := range s.problems {
		problems[k] = cloneProblem(v)
	}
	reminders := make(map[string]*entities.Reminder, len(s.reminders))
	for k, v := range s.reminders {
		reminders[k] = cloneReminder(v)
	}
	s.mu.Unlock()

	err := fn(ctx, TxRepositories{Problems: s.problemRepo(), Reminders: s.reminderRepo()})
	if err != nil {
		s.mu.Lock()
		s.problems, s.reminders = problems, reminders
		s.mu.Unlock()
	}
	return err
}

func (s *memStore) remindersFor(problemID string) []*entities.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entities.Reminder
	for _, r := range s.reminders {
		if r.ProblemID == problemID {
			out = append(out, cloneReminder(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

type fakeProblems struct{ s *memStore }

func (f *fakeProblems) Create(_ context.Context, p *entities.Problem) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.problems[p.ID] = cloneProblem(p)
	return nil
}

func (f *fakeProblems) GetByID(_ context.Context, userID int64, id string) (*entities.Problem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.problems[id]
	if !ok || p.UserID != userID {
		return nil, entities.ErrProblemNotFound
	}
	return cloneProblem(p), nil
}

func (f *fakeProblems) GetForUpdate(ctx context.Context, userID int64, id string) (*entities.Problem, error) {
	return f.GetByID(ctx, userID, id)
}

func (f *fakeProblems) List(_ context.Context, userID int64, filter entities.ProblemFilter) ([]*entities.Problem, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entities.Problem
	for _, p := range f.s.problems {
		if p.UserID != userID {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Tag != "" && !slices.Contains(p.Tags, filter.Tag) {
			continue
		}
		out = append(out, cloneProblem(p))
	}
	return out, nil
}

func (f *fakeProblems) Update(_ context.Context, p *entities.Problem) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.problems[p.ID]
	if !ok || cur.UserID != p.UserID {
		return entities.ErrProblemNotFound
	}
	practice := cur.Practice
	f.s.problems[p.ID] = cloneProblem(p)
	f.s.problems[p.ID].Practice = practice
	return nil
}

func (f *fakeProblems) UpdatePracticeMeta(_ context.Context, p *entities.Problem) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.problems[p.ID]
	if !ok || cur.UserID != p.UserID {
		return entities.ErrProblemNotFound
	}
	cur.Practice = p.Practice
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (f *fakeProblems) Delete(_ context.Context, userID int64, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.problems[id]
	if !ok || p.UserID != userID {
		return entities.ErrProblemNotFound
	}
	delete(f.s.problems, id)
	for rid, r := range f.s.reminders {
		if r.ProblemID == id {
			delete(f.s.reminders, rid)
		}
	}
	return nil
}

type fakeReminders struct{ s *memStore }

func (f *fakeReminders) Create(_ context.Context, r *entities.Reminder) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failReminderCreate != nil {
		return f.s.failReminderCreate
	}
	f.s.reminders[r.ID] = cloneReminder(r)
	return nil
}

func (f *fakeReminders) CreateBatch(ctx context.Context, rs []*entities.Reminder) error {
	for _, r := range rs {
		if err := f.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeReminders) GetByID(_ context.Context, userID int64, id string) (*entities.Reminder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reminders[id]
	if !ok || r.UserID != userID {
		return nil, entities.ErrReminderNotFound
	}
	return cloneReminder(r), nil
}

func (f *fakeReminders) List(_ context.Context, userID int64, filter entities.ReminderFilter) ([]*entities.Reminder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entities.Reminder
	for _, r := range f.s.reminders {
		if r.UserID != userID || (filter.ProblemID != "" && r.ProblemID != filter.ProblemID) {
			continue
		}
		out = append(out, cloneReminder(r))
	}
	return out, nil
}

func (f *fakeReminders) Delete(_ context.Context, userID int64, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reminders[id]
	if !ok || r.UserID != userID {
		return entities.ErrReminderNotFound
	}
	delete(f.s.reminders, id)
	return nil
}

func (f *fakeReminders) SetCompleted(_ context.Context, r *entities.Reminder) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.reminders[r.ID]
	if !ok || cur.UserID != r.UserID {
		return entities.ErrReminderNotFound
	}
	cur.IsCompleted, cur.CompletedAt = r.IsCompleted, r.CompletedAt
	return nil
}

func (f *fakeReminders) SelectDue(_ context.Context, now time.Time, limit int) ([]*entities.DueReminder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entities.DueReminder
	for _, r := range f.s.reminders {
		if r.IsSent || r.DueAt.After(now) {
			continue
		}
		name := ""
		if p, ok := f.s.problems[r.ProblemID]; ok {
			name = p.Name
		}
		out = append(out, &entities.DueReminder{
			ReminderID:  r.ID,
			ProblemID:   r.ProblemID,
			ProblemName: name,
			UserID:      r.UserID,
			DueAt:       r.DueAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReminders) MarkSent(_ context.Context, ids []string, sentAt time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.markCalls = append(f.s.markCalls, slices.Clone(ids))
	if f.s.failMarkSent != nil {
		return 0, f.s.failMarkSent
	}
	var n int64
	for _, id := range ids {
		if r, ok := f.s.reminders[id]; ok && !r.IsSent {
			r.IsSent = true
			t := sentAt
			r.SentAt = &t
			n++
		}
	}
	return n, nil
}

type fakePrefs struct{ s *memStore }

func (f *fakePrefs) Get(_ context.Context, userID int64) (*entities.UserPreferences, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.prefs[userID]
	if !ok {
		return nil, entities.ErrPreferencesNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrefs) Upsert(_ context.Context, p *entities.UserPreferences) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *p
	f.s.prefs[p.UserID] = &cp
	return nil
}

type sentNotification struct {
	UserID  int64
	Message string
	Meta    entities.NotificationMeta
}

// fakeSender records deliveries. Users in failFor get an error; users in
// hangFor block until the per-send deadline.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentNotification
	failFor map[int64]bool
	hangFor map[int64]bool
}

var errDeliveryFailed = errors.New("delivery failed")

func (f *fakeSender) Send(ctx context.Context, userID int64, message string, meta entities.NotificationMeta) error {
	if f.hangFor[userID] {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failFor[userID] {
		return errDeliveryFailed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Message: message, Meta: meta})
	return nil
}

func (f *fakeSender) problemIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Meta.ProblemID)
	}
	sort.Strings(out)
	return out
}
