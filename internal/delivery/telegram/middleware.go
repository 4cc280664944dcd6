package telegram

import (
	"context"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling logs a failed command and answers the chat with a generic error.
func (h *Handler) withErrorHandling(command string, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		h.logger.Error("command failed",
			zap.String("command", command),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		h.sendError(chatID, msgInternalError)
		return nil
	}
}

func (h *Handler) commandTable() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"start": h.withErrorHandling("start", h.startHandler),
		"help":  h.withErrorHandling("help", h.helpHandler),
	}
}
