package models

import (
	"fmt"
	"net/http"
	"strings"
)

// Error codes shared by the client core and the reference API server.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeAuthorizationDenied = "AUTHORIZATION_DENIED"
	CodeNetwork             = "NETWORK_ERROR"
	CodeServerRejection     = "SERVER_REJECTION"
	CodePartialFailure      = "PARTIAL_FAILURE"
	CodeInFlight            = "IN_FLIGHT"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching. Any AppError with the same code matches.
var (
	ErrValidation          = &AppError{Code: CodeValidation}
	ErrNotFound            = &AppError{Code: CodeNotFound}
	ErrUnauthorized        = &AppError{Code: CodeUnauthorized}
	ErrAuthorizationDenied = &AppError{Code: CodeAuthorizationDenied}
	ErrNetwork             = &AppError{Code: CodeNetwork}
	ErrServerRejection     = &AppError{Code: CodeServerRejection}
	ErrPartialFailure      = &AppError{Code: CodePartialFailure}
	ErrInFlight            = &AppError{Code: CodeInFlight, Message: "another request is still in progress"}
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Status is the HTTP status of a server rejection.
	Status int
	// Problems lists every individual check that failed in an aggregate validation.
	Problems []string
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return strings.ToLower(strings.ReplaceAll(e.Code, "_", " "))
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code. A server rejection with status 404 also
// matches ErrNotFound.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code == CodeNotFound && e.Code == CodeServerRejection && e.Status == http.StatusNotFound {
		return true
	}
	return t.Code == e.Code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewValidationError reports a failed local or server-side check. When
// problems are given the error is an aggregate of all of them.
func NewValidationError(message string, problems ...string) *AppError {
	return &AppError{
		Code:     CodeValidation,
		Message:  message,
		Problems: problems,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewAuthorizationDenied reports a policy refusal. On the client it is raised
// before any request is built.
func NewAuthorizationDenied(message string) *AppError {
	return &AppError{
		Code:    CodeAuthorizationDenied,
		Message: message,
	}
}

// NewNetworkError wraps a transport failure: the request did not complete.
func NewNetworkError(op string, err error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: op + " failed",
		Err:     err,
	}
}

// NewServerRejection reports a non-2xx response.
func NewServerRejection(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:    CodeServerRejection,
		Message: message,
		Status:  status,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
