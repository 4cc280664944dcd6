package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	var answer string

	cd := decodeCallback(cb.Data)
	switch cd.Action {
	case actionFeedback:
		answer = h.handleFeedbackCallback(ctx, cb, cd)
	default:
		answer = ansBadCallback
	}

	// Remove the user's "clock".
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, answer)); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

func (h *Handler) handleFeedbackCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) string {
	problemID, quality, err := parseFeedbackCallback(cd)
	if err != nil || cb.Message == nil || cb.Message.Chat == nil {
		h.logger.Warn("invalid feedback callback", zap.String("data", cb.Data))
		return ansBadCallback
	}

	chatID := cb.Message.Chat.ID
	userID, err := h.subs.ResolveUser(ctx, entities.ChannelTelegram, strconv.FormatInt(chatID, 10))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return ansNotSubscribed
		}
		h.logger.Error("failed to resolve chat owner", zap.Int64("chat_id", chatID), zap.Error(err))
		return ansFailed
	}

	res, err := h.feedback.SubmitFeedback(ctx, userID, problemID, quality)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return ansProblemGone
		}
		h.logger.Error("failed to submit feedback",
			zap.Int64("user_id", userID),
			zap.String("problem_id", problemID),
			zap.Error(err),
		)
		return ansFailed
	}

	h.send(newHTMLEdit(chatID, cb.Message.MessageID, feedbackRecordedText(cb.Message.Text, res, quality)))
	return ansFeedbackSaved
}
