package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliskhannn/revisit/internal/domain/srs"
)

// Callback action constants.
const (
	actionFeedback = "fb"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildFeedbackCallback builds callback data for grading a problem from a reminder.
func buildFeedbackCallback(problemID string, quality int) string {
	return callbackData{
		Action: actionFeedback,
		Params: []string{problemID, strconv.Itoa(quality)},
	}.encode()
}

var errBadCallback = errors.New("malformed callback data")

func parseFeedbackCallback(cd callbackData) (string, int, error) {
	if cd.Action != actionFeedback || len(cd.Params) != 2 || cd.Params[0] == "" {
		return "", 0, fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
	}

	quality, err := strconv.Atoi(cd.Params[1])
	if err != nil || srs.ValidateQuality(quality) != nil {
		return "", 0, fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
	}
	return cd.Params[0], quality, nil
}
