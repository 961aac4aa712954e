// errors.go - Structured error handling for API responses
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is the JSON error shape returned by every failing endpoint.
// Detail carries renderer diagnostics on 400s; internal causes are logged
// server-side and never serialized.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Detail  string `json:"detail,omitempty"`

	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// NewBadRequestError creates a 400 with a caller-visible detail message.
func NewBadRequestError(message, detail string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Detail:  detail,
	}
}

// NewNotFoundError creates a 404 with the given public message.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewInternalError creates an opaque 500. The cause is kept for server-side
// logging only.
func NewInternalError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		cause:   cause,
	}
}

// ErrorHandler converts any error escaping a handler into one of the JSON
// error shapes above. Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Message: http.StatusText(e.Code),
		}
		if msg, ok := e.Message.(string); ok {
			apiErr.Message = msg
		}
	default:
		apiErr = NewInternalError(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		if apiErr.cause != nil {
			c.Logger().Errorf("internal error: %v", apiErr.cause)
		} else {
			c.Logger().Errorf("internal error: %v", err)
		}
	}

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		c.Logger().Errorf("writing error response: %v", err)
	}
}
