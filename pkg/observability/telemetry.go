// Package observability provides OpenTelemetry metrics with pluggable
// readers and graceful degradation when no reader is configured.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/shelterpoint/casevault/pkg/runner"
)

// Config configures the telemetry stack.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// MetricReader is the pluggable reader (Prometheus, OTLP, stdout).
	// When nil, metrics are recorded against a no-op provider.
	MetricReader sdkmetric.Reader

	Logger runner.Logger
}

// Telemetry holds the initialized meter provider and instruments.
type Telemetry struct {
	MeterProvider metric.MeterProvider
	Metrics       *Metrics

	shutdown func(context.Context) error
}

// Init sets up metrics. With no reader configured all instruments stay
// usable as no-ops, so call sites never need nil checks.
func Init(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.Logger == nil {
		cfg.Logger = runner.NewNoopLogger()
	}

	tel := &Telemetry{}

	if cfg.MetricReader == nil {
		tel.MeterProvider = noop.NewMeterProvider()
		cfg.Logger.Info("metrics disabled (no reader configured)")
	} else {
		res, err := resource.New(ctx,
			resource.WithAttributes(
				attribute.String("service.name", cfg.ServiceName),
				attribute.String("service.version", cfg.ServiceVersion),
				attribute.String("deployment.environment", cfg.Environment),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(cfg.MetricReader),
		)
		tel.MeterProvider = mp
		tel.shutdown = mp.Shutdown
		otel.SetMeterProvider(mp)
		cfg.Logger.Info("metrics initialized", "service", cfg.ServiceName)
	}

	meter := tel.MeterProvider.Meter("github.com/shelterpoint/casevault")
	metrics, err := NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	tel.Metrics = metrics

	return tel, nil
}

// Shutdown flushes and stops the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}
