// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/revisit/internal/domain/srs"
	"github.com/aliskhannn/revisit/internal/notify"
	"github.com/aliskhannn/revisit/internal/service"
)

const (
	msgWelcome = "Hi! I deliver your revisit reminders.\n\n" +
		"This chat id is <code>%d</code>. Subscribe it with channel <b>telegram</b> " +
		"to receive reminders here, then grade each review with the buttons under the message."
	msgHelp           = "/start shows the chat id to subscribe.\nPress 0-5 under a reminder to record how well you recalled the problem."
	msgUnknownCommand = "Unknown command. Try /help."
	msgInternalError  = "Something went wrong. Please try again later."
)

// Callback answers shown as a toast.
const (
	ansFeedbackSaved = "Saved"
	ansBadCallback   = "This button is no longer valid"
	ansNotSubscribed = "This chat is not subscribed to any account"
	ansProblemGone   = "The problem was deleted"
	ansFailed        = "Could not save, try again"
)

const dueLayout = "Mon, 02 Jan 2006 15:04 MST"

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func newHTMLEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return edit
}

func reminderText(msg notify.Message) string {
	var sb strings.Builder
	sb.WriteString(escape(msg.Text))
	if !msg.Meta.DueAt.IsZero() {
		fmt.Fprintf(&sb, "\n<i>Due %s</i>", msg.Meta.DueAt.UTC().Format(dueLayout))
	}
	sb.WriteString("\n\nHow well did you recall it? 0 = blackout, 5 = perfect.")
	return sb.String()
}

// feedbackKeyboard lays out quality buttons 0..5 in two rows.
func feedbackKeyboard(problemID string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for q := srs.MinQuality; q <= srs.MaxQuality; q++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprint(q), buildFeedbackCallback(problemID, q),
		))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func feedbackRecordedText(original string, res *service.FeedbackResult, quality int) string {
	next := res.NextDueAt.Format(dueLayout)
	return fmt.Sprintf("%s\n\n<b>Recorded %d/5.</b> Next review %s (in %d d).",
		escape(original), quality, next, res.Problem.Practice.Interval)
}

func welcomeText(chatID int64) string {
	return fmt.Sprintf(msgWelcome, chatID)
}
