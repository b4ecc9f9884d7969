package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	transportGrpc = "grpc"
	transportHttp = "http"

	defaultMetricInterval = 30 * time.Second
	exporterDialTimeout   = 3 * time.Second
)

// transport picks grpc when both endpoints are set.
func (c OtlpConnConfig) transport() (string, string) {
	if c.GrpcEndpoint != "" {
		return transportGrpc, c.GrpcEndpoint
	}
	return transportHttp, c.HttpEndpoint
}

func (c OtlpConnConfig) announce(signal string) {
	transport, endpoint := c.transport()
	slog.Info(
		"otlp exporter initialized",
		"signal", signal,
		"type", transport,
		"endpoint", endpoint,
		"headers", len(c.Headers) > 0,
	)
}

// metricInterval is how often gauges are pushed. A single scrape is flushed by
// Shutdown, the interval only matters under `watch`.
func (c OtlpConfig) metricInterval() (time.Duration, error) {
	if c.MetricInterval == "" {
		return defaultMetricInterval, nil
	}
	interval, err := time.ParseDuration(c.MetricInterval)
	if err != nil {
		return 0, fmt.Errorf("otlp.metric_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("otlp.metric_interval must be positive")
	}
	return interval, nil
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	conn := config.Otlp.Traces
	var exporter trace.SpanExporter
	var err error
	switch transport, endpoint := conn.transport(); transport {
	case transportGrpc:
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(conn.Headers),
		)
	default:
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(conn.Headers),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	conn.announce("traces")

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	interval, err := config.Otlp.metricInterval()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	conn := config.Otlp.Metrics
	var exporter metric.Exporter
	switch transport, endpoint := conn.transport(); transport {
	case transportGrpc:
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint),
			otlpmetricgrpc.WithHeaders(conn.Headers),
		)
	default:
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(endpoint),
			otlpmetrichttp.WithHeaders(conn.Headers),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	conn.announce("metrics")

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
