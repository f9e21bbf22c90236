// Package httpx implements the JSON response envelope shared by every API
// endpoint: {success, message, data|error, timestamp}. Error payloads carry
// a stable short code so clients can branch without parsing messages.
package httpx

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Stable error codes exposed to API clients.
const (
	CodeValidation   = "E001"
	CodeNotFound     = "E002"
	CodeDatabase     = "E003"
	CodeConflict     = "E004"
	CodeUnauthorized = "E005"
	CodeForbidden    = "E006"
	CodeInternal     = "E500"
)

// APIError is the error half of the envelope. Details is only populated for
// validation failures; internal errors never leak detail across the API
// boundary.
type APIError struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the uniform response body. Exactly one of Data or Error is
// set, matching Success.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// Success writes a success envelope with the given status and payload.
func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error writes a failure envelope with the given status, message and code.
func Error(c echo.Context, status int, message, code string) error {
	return ErrorWithDetails(c, status, message, code, nil)
}

// ErrorWithDetails is Error with an extra details payload, used for
// validation responses that enumerate the offending fields.
func ErrorWithDetails(c echo.Context, status int, message, code string, details any) error {
	return c.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Error:     &APIError{Code: code, Details: details},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
