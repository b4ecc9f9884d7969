// Package metrics publishes the scraped records as gauges.
package metrics

import (
	"context"
	"errors"
)

// Publisher accepts gauge samples. A gauge is identified by its name, every call with
// the same name must use the same set of label keys.
type Publisher interface {
	Gauge(ctx context.Context, name, help string, labels map[string]string, value float64) error
}

// Multi sends every sample to all of its publishers. A failing publisher does not stop
// the others, the errors are joined.
type Multi []Publisher

func (m Multi) Gauge(ctx context.Context, name, help string, labels map[string]string, value float64) error {
	var errs []error
	for _, pub := range m {
		err := pub.Gauge(ctx, name, help, labels, value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
