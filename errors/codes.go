package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Command dispatch errors
const (
	// ErrCodeUnknownCommand indicates the host has no handler for the command.
	ErrCodeUnknownCommand ErrorCode = "UNKNOWN_COMMAND"
	// ErrCodeInvalidArgs indicates the command arguments could not be decoded or are invalid.
	ErrCodeInvalidArgs ErrorCode = "INVALID_ARGS"
	// ErrCodeUnauthorized indicates the IPC caller presented no valid token.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates the IPC token does not cover the command.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Resource errors
const (
	// ErrCodeResourceNotFound indicates the handle does not name a live resource.
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ErrCodeScopeDenied indicates the URL is outside the host's allowed scope.
	ErrCodeScopeDenied ErrorCode = "SCOPE_DENIED"
	// ErrCodeBodyTooLarge indicates the response body exceeds the host's size limit.
	ErrCodeBodyTooLarge ErrorCode = "BODY_TOO_LARGE"
)

// Network errors (retryable)
const (
	// ErrCodeFetchFailed indicates the host could not complete the HTTP exchange.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"
	// ErrCodeHostBusy indicates the host reached its in-flight request limit.
	ErrCodeHostBusy ErrorCode = "HOST_BUSY"
	// ErrCodeCanceled indicates the request was canceled before it completed.
	ErrCodeCanceled ErrorCode = "REQUEST_CANCELED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected host failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeFetchFailed: true,
	ErrCodeHostBusy:    true,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
