package metrics

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelPublisher records gauges on an OpenTelemetry meter, they are exported by whatever
// reader the meter provider was set up with.
type OtelPublisher struct {
	meter metric.Meter

	mu     sync.Mutex
	gauges map[string]metric.Float64Gauge
}

var _ Publisher = (*OtelPublisher)(nil)

func NewOtelPublisher(meter metric.Meter) *OtelPublisher {
	return &OtelPublisher{
		meter:  meter,
		gauges: map[string]metric.Float64Gauge{},
	}
}

func (p *OtelPublisher) gauge(name, help string) (metric.Float64Gauge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gauge, ok := p.gauges[name]
	if ok {
		return gauge, nil
	}
	gauge, err := p.meter.Float64Gauge(name, metric.WithDescription(help))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", name, err)
	}
	p.gauges[name] = gauge
	return gauge, nil
}

func (p *OtelPublisher) Gauge(ctx context.Context, name, help string, labels map[string]string, value float64) error {
	gauge, err := p.gauge(name, help)
	if err != nil {
		return err
	}
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	gauge.Record(ctx, value, metric.WithAttributes(attrs...))
	return nil
}
