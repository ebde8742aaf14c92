package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
)

// AppError is an error with the HTTP status and the message shown to clients
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"data"`
	Err     error  `json:"-"` // Internal error for logging
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, nil)
}

func NotFound(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

func Internal(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "Internal Server Error", err)
}

// toAppError maps domain errors to HTTP errors
func toAppError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, database.ErrTableNotFound):
		return NotFound("Unknown file", err)
	case errors.Is(err, engine.ErrSourceUnreadable):
		return NewAppError(http.StatusUnprocessableEntity, "File could not be read", err)
	default:
		return Internal(err)
	}
}

// abortWithError writes {"data": message} and stops the handler chain.
// The internal error is attached to the context for the request logger.
func abortWithError(c *gin.Context, err error) {
	appErr := toAppError(err)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.Code, gin.H{"data": appErr.Message})
}
