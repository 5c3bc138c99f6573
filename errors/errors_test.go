package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeResourceNotFound, "gone", http.StatusNotFound)
	if err.Code != ErrCodeResourceNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeResourceNotFound, err.Code)
	}
	if err.Message != "gone" {
		t.Errorf("expected message 'gone', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("RESOURCE_NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeFetchFailed, "connection reset", http.StatusBadGateway)
	if !err.Retryable {
		t.Error("FETCH_FAILED should be retryable")
	}
}

func TestAppError_ResourceNotFound(t *testing.T) {
	err := ResourceNotFound(42)
	if err.Code != ErrCodeResourceNotFound {
		t.Errorf("expected RESOURCE_NOT_FOUND, got %s", err.Code)
	}
	if err.Details["rid"] != uint32(42) {
		t.Errorf("expected rid=42, got %v", err.Details["rid"])
	}
	if !strings.Contains(err.Message, "42") {
		t.Errorf("message should mention the handle, got %q", err.Message)
	}
}

func TestAppError_FetchFailed_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := FetchFailed("http://x", cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Error(), "cause: dial tcp") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"unknown command", UnknownCommand("plugin:x|y"), ErrCodeUnknownCommand, 404, false},
		{"invalid args", InvalidArgs("plugin:http|fetch", "bad json"), ErrCodeInvalidArgs, 400, false},
		{"validation", Validation("url: is required"), ErrCodeInvalidArgs, 400, false},
		{"scope denied", ScopeDenied("http://evil"), ErrCodeScopeDenied, 403, false},
		{"body too large", BodyTooLarge(2, 1024), ErrCodeBodyTooLarge, 413, false},
		{"host busy", HostBusy(8), ErrCodeHostBusy, 503, true},
		{"canceled", Canceled(3), ErrCodeCanceled, 408, false},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, 401, false},
		{"forbidden", Forbidden("plugin:http|fetch"), ErrCodeForbidden, 403, false},
		{"internal", Internal(nil), ErrCodeInternal, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", tt.err.Retryable, tt.retryable)
			}
		})
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Internal(nil).WithDetail("command", "plugin:http|fetch")
	if err.Details["command"] != "plugin:http|fetch" {
		t.Errorf("detail not set: %v", err.Details)
	}
}

func TestToResponse_RoundTrip(t *testing.T) {
	orig := ScopeDenied("http://evil")
	raw, err := json.Marshal(orig.ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"code":"SCOPE_DENIED"`) {
		t.Errorf("unexpected body %s", raw)
	}

	var decoded ErrorResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back := FromResponse(decoded, http.StatusForbidden)
	if back.Code != orig.Code || back.Message != orig.Message || back.HTTPStatus != http.StatusForbidden {
		t.Errorf("rebuilt error mismatch: %+v", back)
	}
}

func TestWrap(t *testing.T) {
	plain := fmt.Errorf("boom")
	if got := Wrap(plain); got.Code != ErrCodeInternal {
		t.Errorf("plain error should wrap as internal, got %s", got.Code)
	}

	busy := HostBusy(1)
	wrapped := fmt.Errorf("dispatch: %w", busy)
	if got := Wrap(wrapped); got != busy {
		t.Error("Wrap should return the existing AppError")
	}
}

func TestHasCodeAndStatusOf(t *testing.T) {
	err := fmt.Errorf("ctx: %w", ResourceNotFound(1))
	if !HasCode(err, ErrCodeResourceNotFound) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(err, ErrCodeInternal) {
		t.Error("HasCode matched the wrong code")
	}
	if got := StatusOf(err); got != http.StatusNotFound {
		t.Errorf("StatusOf = %d, want 404", got)
	}
	if got := StatusOf(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain) = %d, want 500", got)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(Internal(nil)) {
		t.Error("expected AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
	if _, ok := AsAppError(nil); ok {
		t.Error("nil should not convert")
	}
}
