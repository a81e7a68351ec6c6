package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// ErrorHandler renders errors returned by handlers into the error envelope.
// Typed application errors keep their status code; echo's own HTTP errors
// (unknown routes, oversized bodies) pass their status through; anything
// else is a 500.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var custom *utils.CustomError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &custom):
			status = custom.Code
			message = custom.Error()
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if text, ok := httpErr.Message.(string); ok {
				message = text
			}
		}

		if status >= http.StatusInternalServerError {
			logging.GetGlobalLogger().Error("Request failed", map[string]interface{}{
				"request_id": requestID(c),
				"path":       c.Request().URL.Path,
				"error":      err.Error(),
			})
		}

		_ = c.JSON(status, models.ErrorResponse{
			Error:     errorCode(status),
			Message:   message,
			RequestID: requestID(c),
			Timestamp: time.Now(),
		})
	}
}

// errorCode maps a status to the machine-readable code in the envelope.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "no_match"
	case http.StatusBadGateway:
		return "upstream_error"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}
