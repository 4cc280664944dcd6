package main

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/config"
	"github.com/aliskhannn/revisit/internal/delivery/telegram"
	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/domain/srs"
	"github.com/aliskhannn/revisit/internal/infra/postgres"
	"github.com/aliskhannn/revisit/internal/infra/postgres/repository"
	"github.com/aliskhannn/revisit/internal/infra/sqlite"
	"github.com/aliskhannn/revisit/internal/logger"
	"github.com/aliskhannn/revisit/internal/notify"
	"github.com/aliskhannn/revisit/internal/service"
)

// storage is one of the two database backends behind the service interfaces.
type storage struct {
	problems      service.ProblemRepository
	reminders     service.ReminderRepository
	preferences   service.PreferencesRepository
	subscriptions service.SubscriptionRepository
	uow           service.UnitOfWork
	migrate       func(ctx context.Context) error
	close         func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			problems:      db.Problems(),
			reminders:     db.Reminders(),
			preferences:   db.Preferences(),
			subscriptions: db.Subscriptions(),
			uow:           db,
			migrate:       db.Migrate,
			close:         func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &storage{
			problems:      repository.NewProblemRepository(pool),
			reminders:     repository.NewReminderRepository(pool),
			preferences:   repository.NewPreferencesRepository(pool),
			subscriptions: repository.NewSubscriptionRepository(pool),
			uow:           repository.NewUnitOfWork(postgres.NewTransactor(pool)),
			migrate:       func(ctx context.Context) error { return postgres.Migrate(ctx, pool) },
			close:         pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.DB.Driver)
	}
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *storage

	preferences   *service.PreferencesService
	scheduler     *service.SchedulerService
	problems      *service.ProblemService
	reminders     *service.ReminderService
	subscriptions *service.SubscriptionService
	dispatcher    *service.DispatcherService
	bot           *tgbotapi.BotAPI
}

// newApp loads configuration and opens storage. Services are built by wire.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	log.Info("storage opened", zap.String("driver", cfg.DB.Driver), zap.String("env", cfg.Env))
	return &app{cfg: cfg, logger: log, store: store}, nil
}

// wire builds the services. With withTelegram set and a token configured,
// the bot is connected and registered as a notification channel.
func (a *app) wire(withTelegram bool) error {
	policy := srs.Policy{
		ReviewHour:     a.cfg.Scheduler.ReviewHour,
		InitialOffsets: a.cfg.Scheduler.InitialOffsetsDays,
	}

	a.preferences = service.NewPreferencesService(a.store.preferences, a.cfg.Scheduler.DefaultTimezone)
	a.scheduler = service.NewSchedulerService(a.store.uow, a.preferences, policy, a.logger)
	a.problems = service.NewProblemService(a.store.problems, a.store.uow, a.preferences, a.scheduler, a.logger)
	a.reminders = service.NewReminderService(a.store.reminders, a.store.problems, a.logger)
	a.subscriptions = service.NewSubscriptionService(a.store.subscriptions, a.logger)

	sender := notify.NewSender(a.store.subscriptions, a.logger)
	sender.Register(entities.ChannelWebhook, notify.NewWebhookDriver(a.cfg.Notify.WebhookTimeout, a.logger))

	if withTelegram && a.cfg.TelegramAPIToken != "" {
		bot, err := tgbotapi.NewBotAPI(a.cfg.TelegramAPIToken)
		if err != nil {
			return fmt.Errorf("connect telegram: %w", err)
		}
		a.bot = bot
		a.logger.Info("telegram authorized", zap.String("account", bot.Self.UserName))
		sender.Register(entities.ChannelTelegram, telegram.NewNotifier(bot, a.cfg.Notify.TelegramRate, a.logger))
	}

	a.dispatcher = service.NewDispatcherService(a.store.reminders, sender, service.DispatcherConfig{
		Spec:        a.cfg.Dispatcher.Spec,
		BatchSize:   a.cfg.Dispatcher.BatchSize,
		SendTimeout: a.cfg.Dispatcher.SendTimeout,
		Concurrency: a.cfg.Dispatcher.Concurrency,
	}, a.logger)

	return nil
}

func (a *app) Close() {
	a.store.close()
	_ = a.logger.Sync()
}
