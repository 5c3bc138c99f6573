package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified host error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status used when the error crosses the IPC boundary.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Host error constructors ---

// UnknownCommand creates an AppError for a command the host does not serve.
func UnknownCommand(cmd string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("command %s not found", cmd),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"command": cmd},
	}
}

// InvalidArgs creates an AppError for arguments that failed to decode or validate.
func InvalidArgs(cmd, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgs, Message: fmt.Sprintf("invalid args for %s: %s", cmd, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"command": cmd},
	}
}

// Validation creates an AppError for struct validation failures.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgs, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// ResourceNotFound creates an AppError for a handle with no live resource behind it.
func ResourceNotFound(rid uint32) *AppError {
	return &AppError{
		Code: ErrCodeResourceNotFound, Message: fmt.Sprintf("resource id %d is invalid", rid),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"rid": rid},
	}
}

// ScopeDenied creates an AppError for a URL the host is not allowed to fetch.
func ScopeDenied(url string) *AppError {
	return &AppError{
		Code: ErrCodeScopeDenied, Message: fmt.Sprintf("url not allowed on the configured scope: %s", url),
		HTTPStatus: http.StatusForbidden, Retryable: false,
		Details: map[string]any{"url": url},
	}
}

// BodyTooLarge creates an AppError for a response body above the host's limit.
func BodyTooLarge(rid uint32, limit int64) *AppError {
	return &AppError{
		Code: ErrCodeBodyTooLarge, Message: fmt.Sprintf("response body exceeds %d bytes", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge, Retryable: false,
		Details: map[string]any{"rid": rid, "limit": limit},
	}
}

// FetchFailed creates an AppError for a failed HTTP exchange on the host.
func FetchFailed(url string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeFetchFailed, Message: fmt.Sprintf("fetch %s failed", url),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"url": url}, Cause: cause,
	}
}

// HostBusy creates an AppError for a host that is at its in-flight limit.
func HostBusy(limit int) *AppError {
	return &AppError{
		Code: ErrCodeHostBusy, Message: "Too many requests in flight. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"limit": limit},
	}
}

// Canceled creates an AppError for a request that was canceled.
func Canceled(rid uint32) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "The request was canceled.",
		HTTPStatus: http.StatusRequestTimeout, Retryable: false,
		Details: map[string]any{"rid": rid},
	}
}

// Unauthorized creates an AppError for an IPC call without a valid token.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Forbidden creates an AppError for a token that may not invoke cmd.
func Forbidden(cmd string) *AppError {
	return &AppError{
		Code: ErrCodeForbidden, Message: fmt.Sprintf("Token does not allow %q.", cmd),
		HTTPStatus: http.StatusForbidden, Retryable: false,
		Details: map[string]any{"command": cmd},
	}
}

// Internal creates an AppError for an unexpected host failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred in the native host.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
