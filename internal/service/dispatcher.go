package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

const markSentTimeout = 30 * time.Second

type DispatcherConfig struct {
	Spec        string
	BatchSize   int
	SendTimeout time.Duration
	Concurrency int
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Spec:        "@every 1m",
		BatchSize:   100,
		SendTimeout: 10 * time.Second,
		Concurrency: 8,
	}
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	Selected int
	Notified int
	Failed   int
	Skipped  int
	Marked   int64
}

func (r *SweepResult) add(o SweepResult) {
	r.Selected += o.Selected
	r.Notified += o.Notified
	r.Failed += o.Failed
	r.Skipped += o.Skipped
	r.Marked += o.Marked
}

// DispatcherService fires notifications for due reminders and marks them sent.
type DispatcherService struct {
	store  DueReminderStore
	sender NotificationSender
	cfg    DispatcherConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewDispatcherService creates a dispatcher. Zero config fields take defaults.
func NewDispatcherService(store DueReminderStore, sender NotificationSender, cfg DispatcherConfig, logger *zap.Logger) *DispatcherService {
	def := DefaultDispatcherConfig()
	if cfg.Spec == "" {
		cfg.Spec = def.Spec
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	return &DispatcherService{
		store:  store,
		sender: sender,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Run sweeps on the configured cron spec until ctx is cancelled.
// A sweep still running when the next tick fires makes that tick a no-op.
func (s *DispatcherService) Run(ctx context.Context) error {
	s.logger.Info("dispatcher started", zap.String("spec", s.cfg.Spec))

	clog := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	_, err := c.AddFunc(s.cfg.Spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("dispatcher sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("dispatcher stopped")
	return nil
}

// Sweep processes every reminder due at call time, one batch at a time.
func (s *DispatcherService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()

	var total SweepResult
	for {
		batch, err := s.SelectDue(ctx, now)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			break
		}

		res, err := s.DispatchAndMark(ctx, batch, now)
		total.add(res)
		if err != nil {
			return total, err
		}

		// Nothing flipped means the rows cannot leave the due set; stop rather than spin.
		if len(batch) < s.cfg.BatchSize || res.Marked == 0 {
			break
		}
	}

	if total.Selected == 0 {
		s.logger.Debug("no due reminders", zap.Time("now", now))
		return total, nil
	}

	s.logger.Info("reminders processed",
		zap.Int("selected", total.Selected),
		zap.Int("notified", total.Notified),
		zap.Int("failed", total.Failed),
		zap.Int("skipped", total.Skipped),
		zap.Int64("marked", total.Marked),
	)

	return total, nil
}

// SelectDue loads up to one batch of unsent reminders due at or before now.
func (s *DispatcherService) SelectDue(ctx context.Context, now time.Time) ([]*entities.DueReminder, error) {
	due, err := s.store.SelectDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("select due reminders: %w", err)
	}
	return due, nil
}

// DispatchAndMark notifies the owner of every reminder in batch, then marks
// the whole batch sent in one update whatever the delivery outcome.
// Per-item failures are logged and counted, never returned.
func (s *DispatcherService) DispatchAndMark(ctx context.Context, batch []*entities.DueReminder, now time.Time) (SweepResult, error) {
	res := SweepResult{Selected: len(batch)}
	if len(batch) == 0 {
		return res, nil
	}

	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	g.SetLimit(s.cfg.Concurrency)

	for _, d := range batch {
		if err := d.Validate(); err != nil {
			s.logger.Warn("skipping malformed reminder",
				zap.String("reminder_id", d.ReminderID),
				zap.Error(err),
			)
			mu.Lock()
			res.Skipped++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			err := s.notify(ctx, d)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				failed = append(failed, d.ReminderID)
				s.logger.Warn("failed to notify reminder",
					zap.String("reminder_id", d.ReminderID),
					zap.Int64("user_id", d.UserID),
					zap.Error(err),
				)
				return nil
			}
			res.Notified++
			return nil
		})
	}
	_ = g.Wait()

	ids := lo.FilterMap(batch, func(d *entities.DueReminder, _ int) (string, bool) {
		return d.ReminderID, d.ReminderID != ""
	})

	// Sends already happened, so the mark must land even if ctx was cancelled meanwhile.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markSentTimeout)
	defer cancel()

	marked, err := s.store.MarkSent(markCtx, ids, now)
	if err != nil {
		return res, fmt.Errorf("mark reminders sent: %w", err)
	}
	res.Marked = marked

	if len(failed) > 0 {
		s.logger.Warn("reminders marked sent without confirmed delivery",
			zap.Strings("reminder_ids", failed),
		)
	}

	return res, nil
}

func (s *DispatcherService) notify(ctx context.Context, d *entities.DueReminder) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	return s.sender.Send(ctx, d.UserID, d.Message(), d.Meta())
}

// cronLogger routes robfig/cron diagnostics into zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
