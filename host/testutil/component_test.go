package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/nativefetch/component"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/httpclient"
	basetestutil "github.com/kbukum/nativefetch/testutil"
)

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(host.Config{}, nil)

	if c.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("unstarted component should be unhealthy")
	}
	if err := c.Reset(ctx); err == nil {
		t.Error("Reset before Start should fail")
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if c.Health(ctx).Status != component.StatusHealthy {
		t.Error("started component should be healthy")
	}
	if c.Host() == nil || c.Dispatcher() == nil || c.URL("/x") == "" {
		t.Error("accessors should be set after Start")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestComponent_RecordsThroughAdapter(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(host.Config{}, nil)
	h := basetestutil.T(t)
	h.Setup(c)

	a, err := httpclient.New(c.Invoker(), httpclient.Config{})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	resp, err := a.Do(ctx, &httpclient.Request{
		Method:       "PUT",
		URL:          c.URL("/items/1"),
		Params:       httpclient.P("v", 2),
		Headers:      httpclient.P("X-Test", "yes"),
		Data:         map[string]any{"name": "one"},
		ResponseType: httpclient.ResponseJSON,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if data, ok := resp.Data.(map[string]any); !ok || data["name"] != "one" {
		t.Errorf("echoed data = %#v", resp.Data)
	}

	req, ok := c.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if req.Method != http.MethodPut || req.Path != "/items/1" || req.RawQuery != "v=2" {
		t.Errorf("request = %s %s?%s", req.Method, req.Path, req.RawQuery)
	}
	if req.Header.Get("X-Test") != "yes" || req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("headers = %v", req.Header)
	}
	if string(req.Body) != `{"name":"one"}` {
		t.Errorf("body = %s", req.Body)
	}

	snap := h.Snapshot(c)
	h.Reset(c)
	if len(c.Requests()) != 0 {
		t.Error("Reset should clear requests")
	}
	h.Restore(c, snap)
	if len(c.Requests()) != 1 {
		t.Errorf("restored %d requests, want 1", len(c.Requests()))
	}
	if err := c.Restore(ctx, "nope"); err == nil {
		t.Error("Restore should reject a foreign snapshot")
	}
}

func TestComponent_CustomHandler(t *testing.T) {
	c := NewComponent(host.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	basetestutil.T(t).Setup(c)

	a, _ := httpclient.New(c.Invoker(), httpclient.Config{})
	_, err := a.Do(context.Background(), &httpclient.Request{URL: c.URL("/")})
	if httpclient.StatusCode(err) != http.StatusTeapot {
		t.Errorf("err = %v", err)
	}
}
