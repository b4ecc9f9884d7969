package commands

import (
	"context"
	"errors"
	"log/slog"

	"corepool-exporter/internal/components/chrono"
	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/internal/config"
	"corepool-exporter/internal/corepool"
	"corepool-exporter/internal/exporter"
	"corepool-exporter/internal/metrics"
	"corepool-exporter/internal/sessionstore"
	"corepool-exporter/lib/restyutil"
	"corepool-exporter/lib/serviceutil"
	libtelemetry "corepool-exporter/lib/telemetry"
)

const serviceName = "corepool-exporter"

func mustLoadConfig(validate bool) config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if validate {
		err = cfg.Validate()
		if err != nil {
			serviceutil.Fatal("invalid config", err)
		}
	}
	return cfg
}

func newStore(cfg config.Config) sessionstore.Store {
	return sessionstore.New(cfg.Scraper.ClientPath(), cfg.Scraper.CookiesPath())
}

// setupTelemetry installs the otel providers when they are configured and returns the
// publisher that forwards gauges to them, nil when metrics export is off.
func setupTelemetry(ctx context.Context, cfg config.Config) (libtelemetry.Telemetry, metrics.Publisher) {
	otel, err := libtelemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if !otel.MetricsEnabled() {
		return otel, nil
	}
	return otel, metrics.NewOtelPublisher(otel.MeterProvider.Meter(serviceName))
}

func shutdownTelemetry(otel libtelemetry.Telemetry) {
	err := otel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err.Error())
	}
}

// newExporter wires a validated config into an exporter, every run of it opens a new
// session on the same persisted state.
func newExporter(cfg config.Config, opts exporter.Options) exporter.Exporter {
	tel := telemetry.SlogAPI{}

	delay, err := cfg.Scraper.RetryDelayDuration()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}
	timeout, err := cfg.Scraper.TimeoutDuration()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	clientOpts := corepool.ClientOptions{
		Timeout:           timeout,
		RequestsPerSecond: cfg.Scraper.RequestLimit(),
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			serviceutil.Fatal("failed to prepare http dump", err)
		}
		clientOpts.Dump = output
	}

	factory := corepool.NewClientFactory(
		cfg.Scraper.BaseUrl,
		clientOpts,
		corepool.RetryPolicy{MaxAttempts: cfg.Scraper.MaxAttempts, Delay: delay},
		chrono.NewStandardTime(),
		tel,
	)
	auth := corepool.NewAuthenticator(cfg.Username, cfg.Password, tel)
	store := newStore(cfg)

	return exporter.New(func() exporter.Session {
		return corepool.NewSessionManager(store, factory, auth, tel)
	}, opts, tel)
}

var errNoOutput = errors.New("no metrics output, set METRICS_FILE_PATH (metrics_file_path) or pass --stdout")
