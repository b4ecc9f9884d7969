package commands

import (
	"log/slog"
	"time"

	"corepool-exporter/internal/components/chrono"
	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/internal/exporter"
	"corepool-exporter/internal/metrics"
	"corepool-exporter/lib/serviceutil"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var watchSchedule *string

func init() {
	watchSchedule = watchCmd.Flags().String("schedule", "@every 5m", "When to scrape, in cron syntax or as @every <duration>.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--schedule <spec>]",
	Short: "Scrapes core-pool.com on a schedule until interrupted.",
	Long: `Scrapes once right away and then on every tick of the schedule. A tick is skipped
while the previous scrape is still running, a failed scrape is logged and the next
tick tries again.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		_, err := cron.ParseStandard(*watchSchedule)
		if err != nil {
			serviceutil.Fatal("invalid schedule", err)
		}

		cfg := mustLoadConfig(true)
		if cfg.MetricsFilePath == "" {
			serviceutil.Fatal("nothing to do", errNoOutput)
		}

		otel, publisher := setupTelemetry(ctx, cfg)
		defer shutdownTelemetry(otel)

		opts := exporter.Options{
			TextfilePath: cfg.MetricsFilePath,
			Publisher:    publisher,
		}
		process, err := metrics.NewProcessStats()
		if err == nil {
			opts.Process = &process
		} else {
			slog.Warn("process stats are unavailable", "err", err.Error())
		}
		exp := newExporter(cfg, opts)

		scrape := func() {
			start := time.Now()
			_, err := exp.Run(ctx)
			if err != nil {
				slog.Error("scrape failed", "err", err.Error())
				return
			}
			slog.Info("scrape finished", "seconds", time.Since(start).Seconds())
		}

		// the first scrape finishes before the schedule starts so the two never overlap
		scrape()

		cronner := chrono.NewStandardCron(telemetry.SlogAPI{})
		err = cronner.Cron(*watchSchedule, scrape)
		if err != nil {
			cronner.Stop()
			serviceutil.Fatal("invalid schedule", err)
		}
		slog.Info("watching", "schedule", *watchSchedule)

		<-ctx.Done()
		cronner.Stop()
	},
}
