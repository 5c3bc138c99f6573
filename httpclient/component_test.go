package httpclient

import (
	"context"
	"testing"

	"github.com/kbukum/nativefetch/component"
)

func TestComponent_Lifecycle(t *testing.T) {
	fb := newFakeBridge(200, nil, "")
	c := NewComponent(fb, Config{Name: "api", BaseURL: "https://api.example.com"})

	if c.Name() != "api" {
		t.Errorf("name = %q", c.Name())
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.Adapter() == nil {
		t.Fatal("adapter should exist after Start")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy || h.Name != "api" {
		t.Errorf("health after start = %+v", h)
	}
	d := c.Describe()
	if d.Type != "adapter" || d.Details != "https://api.example.com" {
		t.Errorf("describe = %+v", d)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.Adapter() != nil {
		t.Error("adapter should be released on Stop")
	}
}

func TestComponent_DefaultNameAndStartError(t *testing.T) {
	c := NewComponent(nil, Config{})
	if c.Name() != "http" {
		t.Errorf("default name = %q", c.Name())
	}
	if err := c.Start(context.Background()); err == nil {
		t.Error("Start without an invoker should fail")
	}
}

func TestComponent_InRegistry(t *testing.T) {
	reg := component.NewRegistry()
	if err := reg.Register(NewComponent(newFakeBridge(200, nil, ""), Config{})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if got := component.Overall(reg.HealthAll(context.Background())); got != component.StatusHealthy {
		t.Errorf("overall = %s", got)
	}
	if err := reg.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
}
