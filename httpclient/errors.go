package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/nativefetch/bridge"
	apperrors "github.com/kbukum/nativefetch/errors"
)

// Error codes carried by *Error.
const (
	// ErrBadRequest marks a 4xx response.
	ErrBadRequest = "ERR_BAD_REQUEST"
	// ErrBadResponse marks a 5xx response.
	ErrBadResponse = "ERR_BAD_RESPONSE"
	// ErrHTTPStatus marks a non-2xx response outside 400-599.
	ErrHTTPStatus = "ERR_HTTP_STATUS"
	// ErrBadOption marks a request that could not be normalized.
	ErrBadOption = "ERR_BAD_OPTION_VALUE"
)

// Error is returned for responses outside 2xx and for requests that cannot
// be encoded. Failures of the bridge itself are returned unchanged.
type Error struct {
	// Message describes the failure, e.g. "Request failed with status code 404".
	Message string
	// Code is one of the Err* constants.
	Code string
	// Config is the request as passed to Do.
	Config *Request
	// Request is the normalized request handed to the bridge.
	Request *bridge.ClientConfig
	// Response is set for status errors.
	Response *Response
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the response status, or 0 when there is no response.
func (e *Error) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// codeForStatus maps a non-2xx status to its error code.
func codeForStatus(status int) string {
	switch status / 100 {
	case 4:
		return ErrBadRequest
	case 5:
		return ErrBadResponse
	default:
		return ErrHTTPStatus
	}
}

func newStatusError(resp *Response, cc *bridge.ClientConfig) *Error {
	return &Error{
		Message:  fmt.Sprintf("Request failed with status code %d", resp.Status),
		Code:     codeForStatus(resp.Status),
		Config:   resp.Config,
		Request:  cc,
		Response: resp,
	}
}

func newOptionError(req *Request, err error) *Error {
	return &Error{
		Message: "invalid request",
		Code:    ErrBadOption,
		Config:  req,
		Err:     err,
	}
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the response status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status()
	}
	return 0
}

// IsBadRequest checks if err carries a 4xx response.
func IsBadRequest(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrBadRequest
}

// IsBadResponse checks if err carries a 5xx response.
func IsBadResponse(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrBadResponse
}

// IsAuth checks if err carries a 401 or 403 response.
func IsAuth(err error) bool {
	s := StatusCode(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsNotFound checks if err carries a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRateLimit checks if err carries a 429 response.
func IsRateLimit(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsRetryable decides whether a failed Do is worth another attempt: 5xx,
// 408 and 429 responses, and host errors flagged retryable. Cancellation
// and all other errors are final.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if e, ok := AsError(err); ok {
		s := e.Status()
		return s >= 500 || s == http.StatusTooManyRequests || s == http.StatusRequestTimeout
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}
