// Package apierr turns domain errors into HTTP responses of the form
// {"error": {"message": ..., "status": ...}}.
package apierr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/sqlbuild"
	"github.com/Skryldev/sharebnb/storage"
)

// Error is an error with an HTTP status and a client-safe message.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message, nil) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message, nil) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message, nil) }

// From classifies err. Unknown errors become a 500 with a generic message.
func From(err error) *Error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case db.IsNotFound(err):
		return New(http.StatusNotFound, "Not found", err)
	case db.IsDuplicateKey(err):
		return New(http.StatusConflict, "Already exists", err)
	case db.IsForeignKeyViolation(err):
		return New(http.StatusConflict, "Referenced record does not exist or is still in use", err)
	case db.IsCheckViolation(err), errors.Is(err, sqlbuild.ErrInvalidArgument):
		return New(http.StatusBadRequest, "Invalid data", err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return New(http.StatusUnauthorized, "Invalid username/password", err)
	case errors.Is(err, auth.ErrInvalidToken):
		return New(http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, storage.ErrDisabled):
		return New(http.StatusServiceUnavailable, "Image storage is not configured", err)
	case db.IsTimeout(err), db.IsConnectionFailed(err):
		return New(http.StatusServiceUnavailable, "Database unavailable", err)
	default:
		return New(http.StatusInternalServerError, "Internal Server Error", err)
	}
}

// Abort writes err as the response and stops the handler chain. Server-side
// failures are logged with their cause.
func Abort(c *gin.Context, err error) {
	e := From(err)
	if e.Status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", e.Status, "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status, gin.H{"error": gin.H{"message": e.Message, "status": e.Status}})
}
