package completion

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure messages reported for upstream errors, one per call shape.
const (
	MsgChatFailed     = "Failed to generate AI response"
	MsgGenerateFailed = "Failed to generate content"
	MsgTestFailed     = "Failed to connect to OpenRouter"
	MsgNoContent      = "No content generated"
	MsgInternal       = "Internal server error"
)

// Validation messages.
const (
	MsgAPIKeyRequired   = "API key is required"
	MsgMessagesRequired = "Messages array is required"
	MsgPromptRequired   = "Prompt is required"
)

// ValidationError reports a request that was rejected before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Failure is a completion that did not produce content: an upstream HTTP
// error, an empty completion body, or a transport error.
type Failure struct {
	Status  int
	Message string
	Details any
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (status %d)", f.Message, f.Status)
}

// UpstreamFailure wraps a non-2xx gateway response.
func UpstreamFailure(status int, message string, details any) *Failure {
	if details == nil {
		details = map[string]any{}
	}
	return &Failure{Status: status, Message: message, Details: details}
}

// EmptyResultFailure reports a 2xx response without content.
func EmptyResultFailure() *Failure {
	return &Failure{Status: http.StatusInternalServerError, Message: MsgNoContent}
}

// TransportFailure wraps a network or decoding error.
func TransportFailure(err error) *Failure {
	return &Failure{Status: http.StatusInternalServerError, Message: MsgInternal, Details: err.Error()}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
