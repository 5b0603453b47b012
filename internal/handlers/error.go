package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/logger"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/settings"
)

// ErrorResponse is the standard API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeError maps service errors onto HTTP responses. Upstream failures keep
// the upstream status code.
func writeError(c echo.Context, err error) error {
	if failure, ok := completion.AsFailure(err); ok {
		logger.FromContext(c.Request().Context()).Warn("completion failed",
			"status", failure.Status, "error", failure.Message)
		return c.JSON(failure.Status, ErrorResponse{Error: failure.Message, Details: failure.Details})
	}
	var validation *completion.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Message})
	case errors.Is(err, settings.ErrNotConfigured),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, prompt.ErrUnknownKind):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	logger.FromContext(c.Request().Context()).Error("request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   completion.MsgInternal,
		Details: err.Error(),
	})
}
