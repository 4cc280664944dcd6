package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/aliskhannn/revisit/internal/domain/entities"
)

type errorResponse struct {
	Code    entities.ErrorCode `json:"code"`
	Message string             `json:"message"`
	Field   string             `json:"field,omitempty"`
}

var statusByCode = map[entities.ErrorCode]int{
	entities.CodeValidation:   http.StatusBadRequest,
	entities.CodeNotFound:     http.StatusNotFound,
	entities.CodeUnauthorized: http.StatusUnauthorized,
	entities.CodeInternal:     http.StatusInternalServerError,
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

func toErrorResponse(err error) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	code := entities.CodeOf(err)
	body := errorResponse{Code: code, Message: err.Error()}

	switch code {
	case entities.CodeValidation:
		var ve *entities.ValidationError
		if errors.As(err, &ve) {
			body.Field, body.Message = ve.Field, ve.Message
		}
	case entities.CodeUnauthorized:
		body.Message = "authentication required"
	case entities.CodeInternal:
		body.Message = "internal error"
	}

	return statusByCode[code], body
}

func codeForStatus(status int) entities.ErrorCode {
	switch {
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return entities.CodeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return entities.CodeUnauthorized
	case status >= 400 && status < 500:
		return entities.CodeValidation
	default:
		return entities.CodeInternal
	}
}
