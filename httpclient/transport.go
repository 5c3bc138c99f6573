package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/logger"
)

// Transport is an http.RoundTripper that sends requests through the bridge,
// so any *http.Client can use the host's network stack. Statuses outside
// 2xx are returned as ordinary responses.
type Transport struct {
	// Invoker reaches the host. Required.
	Invoker bridge.Invoker
	// MaxRedirections caps redirects followed by the host.
	MaxRedirections *int
	// ConnectTimeout bounds connection setup on the host.
	ConnectTimeout time.Duration
	// Proxy routes requests through a proxy on the host.
	Proxy *bridge.Proxy
	// Logger receives per-command debug output.
	Logger *logger.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var data []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("httpclient: read request body: %w", err)
		}
		data = b
	}
	if t.Invoker == nil {
		return nil, fmt.Errorf("httpclient: transport has no invoker")
	}

	cc := &bridge.ClientConfig{
		Method:          strings.ToUpper(req.Method),
		URL:             req.URL.String(),
		Headers:         headerPairs(req.Header),
		MaxRedirections: t.MaxRedirections,
		Proxy:           t.Proxy,
	}
	if len(data) > 0 {
		cc.Data = data
	}
	if t.ConnectTimeout > 0 {
		ms := t.ConnectTimeout.Milliseconds()
		cc.ConnectTimeout = &ms
	}

	log := t.Logger
	if log == nil {
		log = logger.WithComponent("httpclient")
	}
	raw, body, err := roundTrip(req.Context(), t.Invoker, log, cc)
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(raw.Headers))
	for _, kv := range raw.Headers {
		header.Add(kv[0], kv[1])
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", raw.Status, statusText(raw.Status, raw.StatusText)),
		StatusCode:    raw.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// headerPairs flattens h into ordered pairs, sorted by name.
func headerPairs(h http.Header) [][2]string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][2]string, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, [2]string{name, v})
		}
	}
	return out
}
