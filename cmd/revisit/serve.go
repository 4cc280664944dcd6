package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/revisit/internal/delivery/httpapi"
	"github.com/aliskhannn/revisit/internal/delivery/telegram"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the reminder dispatcher and the Telegram bot",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}
	if serveMigrate {
		if err := a.store.migrate(ctx); err != nil {
			return err
		}
	}
	if err := a.wire(true); err != nil {
		return err
	}

	srv := httpapi.NewServer(httpapi.Config{
		Addr:            a.cfg.HTTP.Addr,
		JWTSecret:       a.cfg.JWTSecret,
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
	}, httpapi.Services{
		Problems:      a.problems,
		Feedback:      a.scheduler,
		Reminders:     a.reminders,
		Preferences:   a.preferences,
		Subscriptions: a.subscriptions,
	}, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return a.dispatcher.Run(ctx) })

	if a.bot != nil {
		setBotCommands(a.bot, a.logger)
		h := telegram.NewHandler(a.bot, a.logger, a.scheduler, a.subscriptions)
		g.Go(func() error {
			if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	a.logger.Info("shutdown complete")
	return err
}

func setBotCommands(bot *tgbotapi.BotAPI, logger *zap.Logger) {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Show this chat id for subscribing"},
		{Command: "help", Description: "How reminders and grading work"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		logger.Warn("failed to set bot commands", zap.Error(err))
	}
}
