package host

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/component"
	"github.com/kbukum/nativefetch/errors"
	"github.com/kbukum/nativefetch/security"
	"github.com/kbukum/nativefetch/security/tlstest"
)

func newTestHost(t *testing.T, cfg Config) *Host {
	t.Helper()
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Trace", "abc")
		_, _ = w.Write([]byte(`{"k":1}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Agent", r.UserAgent())
		w.Header().Set("X-Custom", r.Header.Get("X-Custom"))
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/set-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
	})
	mux.HandleFunc("/get-cookie", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil {
			_, _ = w.Write([]byte("none"))
			return
		}
		_, _ = w.Write([]byte(c.Value))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func exchange(t *testing.T, inv bridge.Invoker, cc bridge.ClientConfig) (bridge.FetchSendResponse, bridge.ResourceID, []byte) {
	t.Helper()
	ctx := context.Background()

	var rid bridge.ResourceID
	if err := inv.Invoke(ctx, bridge.CmdFetch, bridge.FetchArgs{ClientConfig: cc}, &rid); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var resp bridge.Message[bridge.FetchSendResponse]
	if err := inv.Invoke(ctx, bridge.CmdFetchSend, bridge.RIDArgs{RID: rid}, &resp); err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	var body bridge.Message[bridge.ByteArray]
	if err := inv.Invoke(ctx, bridge.CmdFetchReadBody, bridge.RIDArgs{RID: resp.Value.RID}, &body); err != nil {
		t.Fatalf("fetch_read_body: %v", err)
	}
	return resp.Value, rid, body.Value
}

func TestDispatcher_FullExchange(t *testing.T) {
	up := newUpstream(t)
	for _, envelope := range []bool{false, true} {
		t.Run(fmt.Sprintf("envelope=%v", envelope), func(t *testing.T) {
			h := newTestHost(t, Config{Envelope: envelope})
			inv := NewDispatcher(h).Invoker()

			resp, rid, body := exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/ok"})
			if resp.Status != 200 || resp.StatusText != "OK" {
				t.Errorf("status = %d %q", resp.Status, resp.StatusText)
			}
			if resp.RID == rid {
				t.Error("body rid must differ from the request rid")
			}
			if resp.URL != up.URL+"/ok" {
				t.Errorf("url = %s", resp.URL)
			}
			if string(body) != `{"k":1}` {
				t.Errorf("body = %s", body)
			}
			if !containsPair(resp.Headers, "x-trace", "abc") {
				t.Errorf("headers should be lowercased pairs: %v", resp.Headers)
			}
			if h.Open() != 0 || h.InFlight() != 0 {
				t.Errorf("resources leaked: open=%d inflight=%d", h.Open(), h.InFlight())
			}
		})
	}
}

func TestDispatcher_EnvelopeShape(t *testing.T) {
	up := newUpstream(t)
	d := NewDispatcher(newTestHost(t, Config{Envelope: true}))
	ctx := context.Background()

	ridAny, err := d.Dispatch(ctx, bridge.CmdFetch, json.RawMessage(`{"clientConfig":{"url":"`+up.URL+`/ok","headers":[]}}`))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := ridAny.(bridge.ResourceID); !ok {
		t.Fatalf("fetch result should be a bare rid, got %T", ridAny)
	}
	raw, _ := json.Marshal(bridge.RIDArgs{RID: ridAny.(bridge.ResourceID)})
	sent, err := d.Dispatch(ctx, bridge.CmdFetchSend, raw)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if m, ok := sent.(map[string]any); !ok || m["message"] == nil {
		t.Errorf("expected enveloped fetch_send result, got %#v", sent)
	}
}

func TestFetch_MethodHeadersAndData(t *testing.T) {
	up := newUpstream(t)
	inv := NewDispatcher(newTestHost(t, Config{UserAgent: "test-agent"})).Invoker()

	resp, _, body := exchange(t, inv, bridge.ClientConfig{
		Method:  "POST",
		URL:     up.URL + "/echo",
		Headers: [][2]string{{"X-Custom", "v1"}, {"Content-Type", "text/plain"}},
		Data:    bridge.ByteArray("héllo"),
	})
	if string(body) != "héllo" {
		t.Errorf("echoed body = %q", body)
	}
	for _, want := range [][2]string{{"x-method", "POST"}, {"x-agent", "test-agent"}, {"x-custom", "v1"}} {
		if !containsPair(resp.Headers, want[0], want[1]) {
			t.Errorf("missing header %v in %v", want, resp.Headers)
		}
	}
}

func TestFetch_ErrorStatusIsNotAnError(t *testing.T) {
	up := newUpstream(t)
	inv := NewDispatcher(newTestHost(t, Config{})).Invoker()

	resp, _, body := exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/missing"})
	if resp.Status != 404 || resp.StatusText != "Not Found" {
		t.Errorf("status = %d %q", resp.Status, resp.StatusText)
	}
	if strings.TrimSpace(string(body)) != "nope" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_Rejections(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{Scope: ScopeConfig{Allow: []string{up.URL + "/*"}, Deny: []string{"*/missing"}}})
	ctx := context.Background()

	tests := []struct {
		name string
		cc   bridge.ClientConfig
		code errors.ErrorCode
	}{
		{"missing url", bridge.ClientConfig{}, errors.ErrCodeInvalidArgs},
		{"relative url", bridge.ClientConfig{URL: "/ok"}, errors.ErrCodeInvalidArgs},
		{"bad method", bridge.ClientConfig{URL: up.URL + "/ok", Method: "BAD METHOD"}, errors.ErrCodeInvalidArgs},
		{"outside allow", bridge.ClientConfig{URL: "https://example.com/"}, errors.ErrCodeScopeDenied},
		{"denied", bridge.ClientConfig{URL: up.URL + "/missing"}, errors.ErrCodeScopeDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Fetch(ctx, tt.cc)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
	if h.InFlight() != 0 {
		t.Errorf("rejected fetches must not hold slots, in flight = %d", h.InFlight())
	}
}

func TestDispatch_BadCommandsAndArgs(t *testing.T) {
	d := NewDispatcher(newTestHost(t, Config{}))
	ctx := context.Background()

	if _, err := d.Dispatch(ctx, "plugin:http|nope", nil); !errors.HasCode(err, errors.ErrCodeUnknownCommand) {
		t.Errorf("expected UNKNOWN_COMMAND, got %v", err)
	}
	if _, err := d.Dispatch(ctx, bridge.CmdFetchSend, json.RawMessage(`{"rid":"x"}`)); !errors.HasCode(err, errors.ErrCodeInvalidArgs) {
		t.Errorf("expected INVALID_ARGS, got %v", err)
	}
	if _, err := d.Dispatch(ctx, bridge.CmdFetch, nil); !errors.HasCode(err, errors.ErrCodeInvalidArgs) {
		t.Errorf("expected INVALID_ARGS for missing args, got %v", err)
	}
	if _, err := d.Dispatch(ctx, bridge.CmdFetchReadBody, json.RawMessage(`{"rid":999}`)); !errors.HasCode(err, errors.ErrCodeResourceNotFound) {
		t.Errorf("expected RESOURCE_NOT_FOUND, got %v", err)
	}
}

func TestReadBody_RequestRIDIsNotTheBodyRID(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{})
	ctx := context.Background()

	rid, err := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/ok"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := h.ReadBody(ctx, rid); !errors.HasCode(err, errors.ErrCodeInvalidArgs) {
		t.Errorf("reading a pending request should fail with INVALID_ARGS, got %v", err)
	}
	resp, err := h.FetchSend(ctx, rid)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if _, err := h.ReadBody(ctx, rid); !errors.HasCode(err, errors.ErrCodeResourceNotFound) {
		t.Errorf("request rid is gone after send, got %v", err)
	}
	if _, err := h.ReadBody(ctx, resp.RID); err != nil {
		t.Errorf("body rid should be readable: %v", err)
	}
}

func TestBulkheadLimitsOpenExchanges(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{MaxConcurrent: 1})
	ctx := context.Background()
	cc := bridge.ClientConfig{URL: up.URL + "/ok"}

	rid, err := h.Fetch(ctx, cc)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := h.Fetch(ctx, cc); !errors.HasCode(err, errors.ErrCodeHostBusy) {
		t.Fatalf("expected HOST_BUSY, got %v", err)
	}

	resp, err := h.FetchSend(ctx, rid)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if h.InFlight() != 1 {
		t.Errorf("slot should be held until the body is read, in flight = %d", h.InFlight())
	}
	if _, err := h.ReadBody(ctx, resp.RID); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if _, err := h.Fetch(ctx, cc); err != nil {
		t.Errorf("slot should be free again: %v", err)
	}
}

// waitIdle polls until h holds no resources and no slots.
func waitIdle(t *testing.T, h *Host) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for (h.Open() != 0 || h.InFlight() != 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.Open() != 0 || h.InFlight() != 0 {
		t.Fatalf("host not idle: open=%d inflight=%d", h.Open(), h.InFlight())
	}
}

func TestCancel(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{MaxConcurrent: 1})
	ctx := context.Background()
	cc := bridge.ClientConfig{URL: up.URL + "/slow"}

	rid, err := h.Fetch(ctx, cc)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := h.Cancel(ctx, rid); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	waitIdle(t, h)

	if _, err := h.FetchSend(ctx, rid); !errors.HasCode(err, errors.ErrCodeResourceNotFound) {
		t.Errorf("canceled rid should be gone, got %v", err)
	}
	if _, err := h.Fetch(ctx, cc); err != nil {
		t.Errorf("slot should be free after cancel: %v", err)
	}
	if err := h.Cancel(ctx, 12345); !errors.HasCode(err, errors.ErrCodeResourceNotFound) {
		t.Errorf("expected RESOURCE_NOT_FOUND, got %v", err)
	}
}

func TestCancel_WakesWaitingSend(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{})
	ctx := context.Background()

	rid, err := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/slow"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	errc := make(chan error, 1)
	go func() {
		_, err := h.FetchSend(ctx, rid)
		errc <- err
	}()
	time.Sleep(50 * time.Millisecond)
	if err := h.Cancel(ctx, rid); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	select {
	case err := <-errc:
		if !errors.HasCode(err, errors.ErrCodeCanceled) {
			t.Errorf("expected REQUEST_CANCELED, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch_send did not return after cancel")
	}
	waitIdle(t, h)
}

func TestFetch_UnclaimedExchangeExpires(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{MaxConcurrent: 1, Timeout: 100 * time.Millisecond})
	ctx := context.Background()

	for _, path := range []string{"/slow", "/ok"} {
		t.Run(path, func(t *testing.T) {
			rid, err := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + path})
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			waitIdle(t, h)
			if _, err := h.FetchSend(ctx, rid); !errors.HasCode(err, errors.ErrCodeResourceNotFound) {
				t.Errorf("expired rid should be gone, got %v", err)
			}
		})
	}
	if _, err := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/ok"}); err != nil {
		t.Errorf("slot should be free after expiry: %v", err)
	}
}

func TestFetchSend_TimeoutWhileWaiting(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{Timeout: 50 * time.Millisecond})
	ctx := context.Background()

	rid, err := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/slow"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := h.FetchSend(ctx, rid); !errors.HasCode(err, errors.ErrCodeFetchFailed) {
		t.Errorf("expected FETCH_FAILED, got %v", err)
	}
	waitIdle(t, h)
}

func TestFetchSend_DeadExchangeIsNotHandedOut(t *testing.T) {
	h := newTestHost(t, Config{})
	ctx := context.Background()

	exchangeCtx, cancel := context.WithCancel(context.Background())
	cancel()
	released := 0
	p := &pendingRequest{
		url:     "http://upstream/x",
		ctx:     exchangeCtx,
		cancel:  cancel,
		release: func() { released++ },
		done:    make(chan struct{}),
		resp:    &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("late"))},
	}
	close(p.done)
	rid := h.table.add(p)

	if _, err := h.FetchSend(ctx, rid); !errors.HasCode(err, errors.ErrCodeFetchFailed) {
		t.Errorf("expected FETCH_FAILED, got %v", err)
	}
	if released != 1 || h.Open() != 0 {
		t.Errorf("released=%d open=%d, want 1 and 0", released, h.Open())
	}
}

func TestFetch_ExtensionMethod(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{})
	ctx := context.Background()

	rid, err := h.Fetch(ctx, bridge.ClientConfig{Method: "PROPFIND", URL: up.URL + "/echo"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	resp, err := h.FetchSend(ctx, rid)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if _, err := h.ReadBody(ctx, resp.RID); err != nil {
		t.Fatalf("read body: %v", err)
	}
	var method string
	for _, kv := range resp.Headers {
		if kv[0] == "x-method" {
			method = kv[1]
		}
	}
	if method != "PROPFIND" {
		t.Errorf("upstream saw method %q, want PROPFIND", method)
	}
}

func TestCancelUnreadBody(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{})
	ctx := context.Background()

	rid, _ := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/ok"})
	resp, err := h.FetchSend(ctx, rid)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if err := h.Cancel(ctx, resp.RID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if h.Open() != 0 || h.InFlight() != 0 {
		t.Errorf("dropped body leaked: open=%d inflight=%d", h.Open(), h.InFlight())
	}
}

func TestFetchSend_ContextCanceled(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{})

	rid, _ := h.Fetch(context.Background(), bridge.ClientConfig{URL: up.URL + "/slow"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := h.FetchSend(ctx, rid); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for h.InFlight() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.InFlight() != 0 {
		t.Error("abandoned exchange should free its slot")
	}
}

func TestReadBody_SizeLimit(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{MaxBodySize: 10})
	ctx := context.Background()

	rid, _ := h.Fetch(ctx, bridge.ClientConfig{URL: up.URL + "/big"})
	resp, err := h.FetchSend(ctx, rid)
	if err != nil {
		t.Fatalf("fetch_send: %v", err)
	}
	if _, err := h.ReadBody(ctx, resp.RID); !errors.HasCode(err, errors.ErrCodeBodyTooLarge) {
		t.Errorf("expected BODY_TOO_LARGE, got %v", err)
	}
}

func TestFetchSend_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	h := newTestHost(t, Config{})
	ctx := context.Background()
	rid, err := h.Fetch(ctx, bridge.ClientConfig{URL: target + "/gone"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	_, err = h.FetchSend(ctx, rid)
	if !errors.HasCode(err, errors.ErrCodeFetchFailed) {
		t.Fatalf("expected FETCH_FAILED, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if !appErr.Retryable {
		t.Error("connection failures should be retryable")
	}
}

func TestMaxRedirections(t *testing.T) {
	up := newUpstream(t)
	inv := NewDispatcher(newTestHost(t, Config{})).Invoker()

	followed, _, _ := exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/redirect"})
	if followed.Status != 200 || followed.URL != up.URL+"/ok" {
		t.Errorf("default should follow redirects, got %d %s", followed.Status, followed.URL)
	}

	zero := 0
	stopped, _, _ := exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/redirect", MaxRedirections: &zero})
	if stopped.Status != http.StatusFound {
		t.Errorf("maxRedirections=0 should return the redirect, got %d", stopped.Status)
	}
	if !containsPair(stopped.Headers, "location", "/ok") {
		t.Errorf("redirect location missing: %v", stopped.Headers)
	}
}

func TestProxy(t *testing.T) {
	var seen string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.String()
		_, _ = fmt.Fprintf(w, "via proxy auth=%v", r.Header.Get("Proxy-Authorization") != "")
	}))
	defer proxy.Close()

	inv := NewDispatcher(newTestHost(t, Config{})).Invoker()
	_, _, body := exchange(t, inv, bridge.ClientConfig{
		URL: "http://api.example.invalid/v1",
		Proxy: &bridge.Proxy{All: &bridge.ProxyConfig{
			URL:       proxy.URL,
			BasicAuth: &bridge.BasicAuth{Username: "u", Password: "p"},
		}},
	})
	if seen != "http://api.example.invalid/v1" {
		t.Errorf("proxy saw %q", seen)
	}
	if string(body) != "via proxy auth=true" {
		t.Errorf("body = %q", body)
	}
}

func TestProxy_NoProxy(t *testing.T) {
	fn, err := proxyFuncFor(&bridge.Proxy{HTTP: &bridge.ProxyConfig{URL: "http://proxy:3128", NoProxy: "internal.example"}})
	if err != nil {
		t.Fatalf("proxyFuncFor: %v", err)
	}
	direct, _ := http.NewRequest(http.MethodGet, "http://internal.example/x", nil)
	if u, _ := fn(direct); u != nil {
		t.Errorf("noProxy host should go direct, got %v", u)
	}
	proxied, _ := http.NewRequest(http.MethodGet, "http://public.example/x", nil)
	if u, _ := fn(proxied); u == nil || u.Host != "proxy:3128" {
		t.Errorf("expected proxy:3128, got %v", u)
	}
	secure, _ := http.NewRequest(http.MethodGet, "https://public.example/x", nil)
	if u, _ := fn(secure); u != nil {
		t.Errorf("https has no proxy configured, got %v", u)
	}
}

func TestCookies(t *testing.T) {
	up := newUpstream(t)
	for _, enabled := range []bool{false, true} {
		t.Run(fmt.Sprintf("cookies=%v", enabled), func(t *testing.T) {
			inv := NewDispatcher(newTestHost(t, Config{Cookies: enabled})).Invoker()
			exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/set-cookie"})
			_, _, body := exchange(t, inv, bridge.ClientConfig{URL: up.URL + "/get-cookie"})

			want := "none"
			if enabled {
				want = "s1"
			}
			if string(body) != want {
				t.Errorf("cookie = %q, want %q", body, want)
			}
		})
	}
}

func TestTLSRoots(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	srv.TLS = certs.ServerConfig()
	srv.StartTLS()
	defer srv.Close()

	ctx := context.Background()
	untrusted := newTestHost(t, Config{})
	rid, _ := untrusted.Fetch(ctx, bridge.ClientConfig{URL: srv.URL})
	if _, err := untrusted.FetchSend(ctx, rid); !errors.HasCode(err, errors.ErrCodeFetchFailed) {
		t.Errorf("unknown CA should fail, got %v", err)
	}

	trusted := newTestHost(t, Config{TLS: &security.TLSConfig{CAFile: certs.CAFile}})
	_, _, body := exchange(t, NewDispatcher(trusted).Invoker(), bridge.ClientConfig{URL: srv.URL})
	if string(body) != "secure" {
		t.Errorf("body = %q", body)
	}
}

func TestClose_AbortsPending(t *testing.T) {
	up := newUpstream(t)
	h, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := h.Fetch(context.Background(), bridge.ClientConfig{URL: up.URL + "/slow"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.Open() != 0 {
		t.Errorf("open = %d after close", h.Open())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"negative body", Config{MaxBodySize: -1}, true},
		{"negative concurrency", Config{MaxConcurrent: -1}, true},
		{"empty pattern", Config{Scope: ScopeConfig{Allow: []string{""}}}, true},
		{"tls cert without key", Config{TLS: &security.TLSConfig{CertFile: "c.pem"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScope(t *testing.T) {
	s, err := NewScope(ScopeConfig{
		Allow: []string{"https://*.example.com/*", "http://localhost:?000/*"},
		Deny:  []string{"https://admin.example.com/*"},
	})
	if err != nil {
		t.Fatalf("NewScope: %v", err)
	}
	tests := []struct {
		url  string
		want bool
	}{
		{"https://api.example.com/v1/users", true},
		{"https://admin.example.com/panel", false},
		{"https://example.org/", false},
		{"http://localhost:3000/x", true},
		{"ftp://files.example.com/x", false},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.url)
		if got := s.Allows(u); got != tt.want {
			t.Errorf("Allows(%s) = %v, want %v", tt.url, got, tt.want)
		}
	}

	open, _ := NewScope(ScopeConfig{})
	u, _ := url.Parse("https://anything.test/")
	if !open.Allows(u) {
		t.Error("empty allow list should allow http(s)")
	}
}

func TestHeaderPairs(t *testing.T) {
	h := http.Header{}
	h.Add("X-B", "2")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	got := headerPairs(h)
	want := [][2]string{{"set-cookie", "a=1"}, {"set-cookie", "b=2"}, {"x-b", "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("headerPairs = %v, want %v", got, want)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		resp http.Response
		want string
	}{
		{http.Response{StatusCode: 404, Status: "404 Not Found"}, "Not Found"},
		{http.Response{StatusCode: 299, Status: "299 Custom Thing"}, "Custom Thing"},
		{http.Response{StatusCode: 201}, "Created"},
	}
	for _, tt := range tests {
		if got := statusText(&tt.resp); got != tt.want {
			t.Errorf("statusText(%d) = %q, want %q", tt.resp.StatusCode, got, tt.want)
		}
	}
}

func TestResourceTable(t *testing.T) {
	tbl := newResourceTable()
	a := tbl.add(&bodyResource{})
	b := tbl.add(&bodyResource{})
	if a == 0 || a == b {
		t.Errorf("ids must be non-zero and unique: %d %d", a, b)
	}
	if _, ok := tbl.take(a); !ok {
		t.Error("take should find a")
	}
	if _, ok := tbl.get(a); ok {
		t.Error("a should be gone")
	}
	if c := tbl.add(&bodyResource{}); c == a {
		t.Error("ids must not be reused")
	}
	if n := len(tbl.drain()); n != 2 || tbl.len() != 0 {
		t.Errorf("drain returned %d, left %d", n, tbl.len())
	}
}

func containsPair(pairs [][2]string, name, value string) bool {
	for _, p := range pairs {
		if p[0] == name && p[1] == value {
			return true
		}
	}
	return false
}

func TestComponentHealth(t *testing.T) {
	up := newUpstream(t)
	h := newTestHost(t, Config{MaxConcurrent: 1})
	c := NewComponent(h)

	if got := c.Health(context.Background()).Status; got != component.StatusHealthy {
		t.Errorf("idle host should be healthy, got %s", got)
	}
	if _, err := h.Fetch(context.Background(), bridge.ClientConfig{URL: up.URL + "/ok"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	health := c.Health(context.Background())
	if health.Status != component.StatusDegraded {
		t.Errorf("saturated host should be degraded, got %s", health.Status)
	}
	if health.Details["open_resources"] != 1 {
		t.Errorf("open_resources = %v", health.Details["open_resources"])
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}
