package metrics

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Registry is a Publisher backed by its own prometheus registry, it can be flushed to a
// node_exporter textfile or rendered in the text exposition format.
type Registry struct {
	registry *prometheus.Registry

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
	labels map[string][]string
}

var _ Publisher = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		registry: prometheus.NewRegistry(),
		gauges:   map[string]*prometheus.GaugeVec{},
		labels:   map[string][]string{},
	}
}

func (r *Registry) Gauge(_ context.Context, name, help string, labels map[string]string, value float64) error {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	r.mu.Lock()
	defer r.mu.Unlock()

	vec, ok := r.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, keys)
		err := r.registry.Register(vec)
		if err != nil {
			return fmt.Errorf("register gauge %s: %w", name, err)
		}
		r.gauges[name] = vec
		r.labels[name] = keys
	} else if !slices.Equal(r.labels[name], keys) {
		return fmt.Errorf("gauge %s: labels %v do not match %v", name, keys, r.labels[name])
	}

	gauge, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return fmt.Errorf("gauge %s: %w", name, err)
	}
	gauge.Set(value)
	return nil
}

// WriteTextfile atomically replaces path with every gauge published so far.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Render writes every gauge published so far in the text exposition format.
func (r *Registry) Render(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(w, family)
		if err != nil {
			return err
		}
	}
	return nil
}

// Value returns the current value of the gauge series with exactly the given labels.
func (r *Registry) Value(name string, labels map[string]string) (float64, bool) {
	families, err := r.registry.Gather()
	if err != nil {
		return 0, false
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

func matchLabels(pairs []*dto.LabelPair, labels map[string]string) bool {
	if len(pairs) != len(labels) {
		return false
	}
	for _, pair := range pairs {
		value, ok := labels[pair.GetName()]
		if !ok || value != pair.GetValue() {
			return false
		}
	}
	return true
}
