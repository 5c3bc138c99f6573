package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/component"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/testutil"
)

// Request is an upstream request as the test server received it.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Component runs an in-process native host and an httptest upstream that
// records every request it serves. It implements testutil.TestComponent.
type Component struct {
	cfg     host.Config
	handler http.Handler

	mu         sync.RWMutex
	server     *httptest.Server
	host       *host.Host
	dispatcher *host.Dispatcher
	requests   []Request
	started    bool
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a test host. A nil handler answers every request
// with 200 and echoes the request body.
func NewComponent(cfg host.Config, handler http.Handler) *Component {
	if handler == nil {
		handler = http.HandlerFunc(echo)
	}
	return &Component{cfg: cfg, handler: handler}
}

func echo(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	_, _ = io.Copy(w, r.Body)
}

// Name returns the component name.
func (c *Component) Name() string { return "native-host-test" }

// Start creates the host and the upstream server.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	h, err := host.New(c.cfg)
	if err != nil {
		return fmt.Errorf("failed to create host: %w", err)
	}
	c.host = h
	c.dispatcher = host.NewDispatcher(h)
	c.server = httptest.NewServer(http.HandlerFunc(c.record))
	c.started = true
	return nil
}

// Stop closes the upstream server and aborts open exchanges.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	server, h := c.server, c.host
	c.started = false
	c.mu.Unlock()

	server.Close()
	return h.Close()
}

// Health returns the health status.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset forgets recorded requests.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.requests = nil
	return nil
}

// Snapshot returns the recorded requests as a []Request.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	return append([]Request(nil), c.requests...), nil
}

// Restore replaces the recorded requests with a snapshot.
func (c *Component) Restore(_ context.Context, snapshot interface{}) error {
	requests, ok := snapshot.([]Request)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected []Request, got %T", snapshot)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.requests = append([]Request(nil), requests...)
	return nil
}

// URL returns the upstream URL for path.
func (c *Component) URL(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.server == nil {
		return ""
	}
	return c.server.URL + path
}

// Host returns the host, or nil if not started.
func (c *Component) Host() *host.Host {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

// Dispatcher returns the host's dispatcher, or nil if not started.
func (c *Component) Dispatcher() *host.Dispatcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dispatcher
}

// Invoker returns an in-process invoker for the host.
func (c *Component) Invoker() bridge.Invoker {
	return c.Dispatcher().Invoker()
}

// Requests returns a copy of the recorded requests.
func (c *Component) Requests() []Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Request(nil), c.requests...)
}

// LastRequest returns the most recent request and whether there was one.
func (c *Component) LastRequest() (Request, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.requests) == 0 {
		return Request{}, false
	}
	return c.requests[len(c.requests)-1], true
}

func (c *Component) record(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	c.mu.Lock()
	c.requests = append(c.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	c.mu.Unlock()

	c.handler.ServeHTTP(w, r)
}
