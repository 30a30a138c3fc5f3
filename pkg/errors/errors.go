package errors

import (
	"errors"
	"fmt"
)

// Stable machine-readable codes carried by every domain error that crosses
// the HTTP or realtime boundary.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AppError is a domain error with a stable code and a human-readable message.
// Infrastructure failures are wrapped with CodeInternal and never expose the
// underlying error text to clients.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, err)
}

func InvalidInput(message string, err error) *AppError {
	return NewAppError(CodeInvalidInput, message, err)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, err)
}

func InvalidState(message string, err error) *AppError {
	return NewAppError(CodeInvalidState, message, err)
}

func Internal(err error) *AppError {
	return NewAppError(CodeInternal, "internal server error", err)
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
