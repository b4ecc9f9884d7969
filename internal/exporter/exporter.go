// Package exporter runs the scrape pipeline once: fetch both pages through an
// authenticated session, extract the records and publish them.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/internal/extract"
	"corepool-exporter/internal/metrics"
)

const (
	report_exporter_extract = "exporter.extract"
	report_exporter_publish = "exporter.publish"
	report_exporter_flush   = "exporter.flush"
)

// Session is the authenticated access to the upstream pages for a single run.
type Session interface {
	Ready(ctx context.Context) error
	FetchDashboard(ctx context.Context) (string, error)
	FetchPool(ctx context.Context) (string, error)
}

type Options struct {
	// TextfilePath is replaced with the gauges of every successful run, empty skips it.
	TextfilePath string
	// Stdout receives the gauges in the text exposition format, nil skips it.
	Stdout io.Writer
	// Publisher receives every gauge in addition to the run's registry, nil skips it.
	Publisher metrics.Publisher
	// Process adds the exporter's own resource usage to every run, nil skips it.
	Process *metrics.ProcessStats
}

type Result struct {
	Dashboard extract.DashboardRecord
	Pool      extract.PoolRecord
}

type Exporter struct {
	newSession func() Session
	opts       Options
	tel        telemetry.API
}

// New returns an exporter that opens a new session with newSession for every run.
func New(newSession func() Session, opts Options, tel telemetry.API) Exporter {
	assert.NotNil(newSession, "newSession")
	assert.NotNil(tel, "tel")

	return Exporter{
		newSession: newSession,
		opts:       opts,
		tel:        telemetry.NewScopedAPI("exporter", tel),
	}
}

// Run scrapes and extracts both pages before publishing anything, so a run either
// publishes every gauge or leaves the previous outputs untouched.
func (e Exporter) Run(ctx context.Context) (Result, error) {
	session := e.newSession()

	err := session.Ready(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("prepare session: %w", err)
	}

	dashboardBody, err := session.FetchDashboard(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch dashboard: %w", err)
	}
	dashboard, err := extract.ExtractDashboard(dashboardBody)
	if err != nil {
		e.tel.ReportBroken(report_exporter_extract, err)
		return Result{}, fmt.Errorf("extract dashboard: %w", err)
	}

	poolBody, err := session.FetchPool(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch pool: %w", err)
	}
	pool, err := extract.ExtractPool(poolBody)
	if err != nil {
		e.tel.ReportBroken(report_exporter_extract, err)
		return Result{}, fmt.Errorf("extract pool: %w", err)
	}

	e.tel.ReportCount("farmers", int64(len(dashboard.Farmers)))
	result := Result{Dashboard: dashboard, Pool: pool}

	// a fresh registry per run, farmers that disappeared upstream must not linger
	registry := metrics.NewRegistry()
	var pub metrics.Publisher = registry
	if e.opts.Publisher != nil {
		pub = metrics.Multi{registry, e.opts.Publisher}
	}

	err = errors.Join(
		metrics.PublishDashboard(ctx, pub, dashboard, e.tel),
		metrics.PublishPool(ctx, pub, pool),
	)
	if err != nil {
		e.tel.ReportBroken(report_exporter_publish, err)
		return result, fmt.Errorf("publish: %w", err)
	}
	if e.opts.Process != nil {
		err = e.opts.Process.Publish(ctx, pub)
		if err != nil {
			e.tel.ReportWarning(report_exporter_publish, "process stats", err)
		}
	}

	return result, e.flush(registry)
}

func (e Exporter) flush(registry *metrics.Registry) error {
	if e.opts.TextfilePath != "" {
		err := registry.WriteTextfile(e.opts.TextfilePath)
		if err != nil {
			e.tel.ReportBroken(report_exporter_flush, err, "path", e.opts.TextfilePath)
			return fmt.Errorf("write metrics file: %w", err)
		}
		e.tel.ReportInfo("metrics written", "path", e.opts.TextfilePath)
	}
	if e.opts.Stdout != nil {
		err := registry.Render(e.opts.Stdout)
		if err != nil {
			e.tel.ReportBroken(report_exporter_flush, err, "stdout")
			return fmt.Errorf("render metrics: %w", err)
		}
	}
	return nil
}
