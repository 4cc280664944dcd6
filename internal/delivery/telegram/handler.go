// Package telegram sends reminders to Telegram chats and records feedback
// submitted from their inline buttons.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/service"
)

// BotAPI is the part of *tgbotapi.BotAPI the package uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, userID int64, problemID string, quality int) (*service.FeedbackResult, error)
}

type SubscriptionResolver interface {
	ResolveUser(ctx context.Context, channel entities.Channel, target string) (int64, error)
}

type Handler struct {
	bot      BotAPI
	logger   *zap.Logger
	feedback FeedbackService
	subs     SubscriptionResolver
	commands map[string]HandlerFunc
}

func NewHandler(bot BotAPI, logger *zap.Logger, feedback FeedbackService, subs SubscriptionResolver) *Handler {
	h := &Handler{
		bot:      bot,
		logger:   logger,
		feedback: feedback,
		subs:     subs,
	}
	h.commands = h.commandTable()
	return h
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	if !update.Message.IsCommand() {
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
		return
	}

	cmd, ok := h.commands[update.Message.Command()]
	if !ok {
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
		return
	}
	_ = cmd(ctx, chatID)
}

func (h *Handler) startHandler(_ context.Context, chatID int64) error {
	_, err := h.bot.Send(newHTMLMessage(chatID, welcomeText(chatID)))
	return err
}

func (h *Handler) helpHandler(_ context.Context, chatID int64) error {
	_, err := h.bot.Send(newHTMLMessage(chatID, msgHelp))
	return err
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newHTMLMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
