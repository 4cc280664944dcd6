package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aliskhannn/revisit/internal/domain/entities"
	"github.com/aliskhannn/revisit/internal/notify"
)

// defaultRate stays under the Bot API global limit of 30 messages per second.
const defaultRate = 25

// Notifier is the notify driver for telegram subscriptions.
type Notifier struct {
	bot     BotAPI
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewNotifier(bot BotAPI, perSecond float64, logger *zap.Logger) *Notifier {
	if perSecond <= 0 {
		perSecond = defaultRate
	}
	return &Notifier{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}
}

func (n *Notifier) Deliver(ctx context.Context, sub *entities.Subscription, msg notify.Message) error {
	chatID, err := sub.ChatID()
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", sub.Target, notify.ErrSubscriptionGone)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}

	out := newHTMLMessage(chatID, reminderText(msg))
	if msg.Meta.ProblemID != "" {
		out.ReplyMarkup = feedbackKeyboard(msg.Meta.ProblemID)
	}

	if _, err := n.bot.Send(out); err != nil {
		if chatGone(err) {
			return fmt.Errorf("chat %d: %v: %w", chatID, err, notify.ErrSubscriptionGone)
		}
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("telegram reminder sent",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", msg.UserID),
		zap.String("problem_id", msg.Meta.ProblemID),
	)
	return nil
}

// chatGone reports whether the bot can no longer write to the chat.
func chatGone(err error) bool {
	var (
		apiErr *tgbotapi.Error
		code   int
		text   string
	)
	switch {
	case errors.As(err, &apiErr):
		code, text = apiErr.Code, apiErr.Message
	default:
		var valErr tgbotapi.Error
		if !errors.As(err, &valErr) {
			return false
		}
		code, text = valErr.Code, valErr.Message
	}
	return code == http.StatusForbidden || strings.Contains(strings.ToLower(text), "chat not found")
}
