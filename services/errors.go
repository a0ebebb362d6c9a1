package services

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAwaitingApproval   = errors.New("account awaiting approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
)

// AppError carries the HTTP status and client-facing message of a workflow
// failure. Err is the sentinel (or cause) and is never shown to clients.
type AppError struct {
	Status  int
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsAuthorization reports whether the error is a missing or insufficient
// role, which clients receive as {"error": ...}.
func (e *AppError) IsAuthorization() bool {
	return errors.Is(e.Err, ErrUnauthorized)
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func Validation(message string, details interface{}) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message, Details: details, Err: ErrInvalidInput}
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrConflict)
}

func InvalidCredentials() *AppError {
	return NewAppError(http.StatusUnauthorized, "Invalid credentials", ErrInvalidCredentials)
}

func AwaitingApproval() *AppError {
	return NewAppError(http.StatusForbidden, "Your account is awaiting approval", ErrAwaitingApproval)
}

func AccountRejected() *AppError {
	return NewAppError(http.StatusForbidden, "Your account was rejected. Please contact support", ErrAccountRejected)
}

func Unauthorized() *AppError {
	return NewAppError(http.StatusUnauthorized, "Unauthorized", ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

// AsAppError converts any error into an AppError, treating unknown errors
// as internal failures.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}
