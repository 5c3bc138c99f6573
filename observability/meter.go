package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/nativefetch/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config, res Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := newResource(res)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricsInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricsInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", res.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricsInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the host's command instruments. A nil *Metrics records nothing.
type Metrics struct {
	commandTotal    metric.Int64Counter
	commandDuration metric.Float64Histogram
	fetchActive     metric.Int64UpDownCounter
	resourcesOpen   metric.Int64UpDownCounter
	bodyBytes       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	commandTotal, err := meter.Int64Counter("bridge.command.total",
		metric.WithDescription("Total number of bridge commands served"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bridge.command.total counter: %w", err)
	}

	commandDuration, err := meter.Float64Histogram("bridge.command.duration",
		metric.WithDescription("Duration of bridge commands in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bridge.command.duration histogram: %w", err)
	}

	fetchActive, err := meter.Int64UpDownCounter("bridge.fetch.active",
		metric.WithDescription("Number of HTTP exchanges currently in flight on the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bridge.fetch.active gauge: %w", err)
	}

	resourcesOpen, err := meter.Int64UpDownCounter("bridge.resources.open",
		metric.WithDescription("Number of live entries in the host resource table"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bridge.resources.open gauge: %w", err)
	}

	bodyBytes, err := meter.Int64Counter("bridge.body.bytes",
		metric.WithDescription("Response body bytes handed to callers"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bridge.body.bytes counter: %w", err)
	}

	return &Metrics{
		commandTotal:    commandTotal,
		commandDuration: commandDuration,
		fetchActive:     fetchActive,
		resourcesOpen:   resourcesOpen,
		bodyBytes:       bodyBytes,
	}, nil
}

// RecordCommand records one served command with its outcome ("ok" or an error code).
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.commandTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	))
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("command", command),
	))
}

// FetchStarted increments the in-flight exchange count.
func (m *Metrics) FetchStarted(ctx context.Context) {
	if m != nil {
		m.fetchActive.Add(ctx, 1)
	}
}

// FetchFinished decrements the in-flight exchange count.
func (m *Metrics) FetchFinished(ctx context.Context) {
	if m != nil {
		m.fetchActive.Add(ctx, -1)
	}
}

// ResourceOpened increments the open resource gauge.
func (m *Metrics) ResourceOpened(ctx context.Context) {
	if m != nil {
		m.resourcesOpen.Add(ctx, 1)
	}
}

// ResourceClosed decrements the open resource gauge.
func (m *Metrics) ResourceClosed(ctx context.Context) {
	if m != nil {
		m.resourcesOpen.Add(ctx, -1)
	}
}

// RecordBodyBytes adds n to the body byte counter.
func (m *Metrics) RecordBodyBytes(ctx context.Context, n int) {
	if m != nil && n > 0 {
		m.bodyBytes.Add(ctx, int64(n))
	}
}
