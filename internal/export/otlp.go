package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"
	"github.com/alignak-monitoring-contrib/alignak-counters/internal/version"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const otlpMetricName = "alignak.counter"

// OTLPConfig defines the OTLP forwarding target.
type OTLPConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Transport string            `yaml:"transport,omitempty"`
	Endpoint  string            `yaml:"endpoint"`
	Insecure  bool              `yaml:"insecure,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Resource  map[string]string `yaml:"resource,omitempty"`
}

// Validate applies defaults and validates the OTLP configuration.
func (c *OTLPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Transport == "" {
		c.Transport = "grpc"
	}
	if c.Transport != "grpc" && c.Transport != "http" {
		return fmt.Errorf("invalid otlp transport: %s (must be grpc or http)", c.Transport)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("otlp endpoint not set")
	}
	if c.Resource == nil {
		c.Resource = make(map[string]string)
	}
	if _, ok := c.Resource["service.name"]; !ok {
		c.Resource["service.name"] = "alignak-counters"
	}
	if _, ok := c.Resource["service.version"]; !ok {
		c.Resource["service.version"] = version.String()
	}
	return nil
}

// PushOTLP forwards the latest sample of each counter series to an OTLP
// metrics collector and flushes before returning.
func PushOTLP(ctx context.Context, cfg OTLPConfig, rs *counters.ResultSet) error {
	exporter, err := newOTLPExporter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create otlp exporter: %w", err)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Resource))
	for k, v := range cfg.Resource {
		attrs = append(attrs, attribute.String(k, v))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	// The push interval is irrelevant for a one-shot export; Shutdown
	// forces the final collect and flush.
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Hour))),
	)

	meter := provider.Meter("alignak-counters")
	gauge, err := meter.Float64ObservableGauge(otlpMetricName,
		otelmetric.WithDescription(promMetricHelp))
	if err != nil {
		return fmt.Errorf("create gauge: %w", err)
	}

	latest := rs.Latest()
	_, err = meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		for _, c := range latest {
			observer.ObserveFloat64(gauge, c.Value, otelmetric.WithAttributes(
				attribute.String("host", c.Host),
				attribute.String("service", c.Service),
				attribute.String("metric", c.Metric),
				attribute.String("uom", c.UOM),
			))
		}
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("register callback: %w", err)
	}

	slog.Debug("pushing counters over otlp",
		"transport", cfg.Transport,
		"endpoint", cfg.Endpoint,
		"series", len(latest))

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("otlp push: %w", err)
	}
	return nil
}

func newOTLPExporter(ctx context.Context, cfg OTLPConfig) (sdkmetric.Exporter, error) {
	switch cfg.Transport {
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
}
