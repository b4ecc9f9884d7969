package commands

import (
	"context"
	"os"

	"corepool-exporter/internal/exporter"
	"corepool-exporter/lib/serviceutil"

	"github.com/spf13/cobra"
)

var scrapeStdout *bool

func init() {
	scrapeStdout = scrapeCmd.Flags().Bool("stdout", false, "Also print the metrics to stdout in the prometheus text format.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--stdout]",
	Short: "Scrapes core-pool.com once and writes the metrics file.",
	Run: func(cmd *cobra.Command, args []string) {
		runScrape(cmd.Context(), *scrapeStdout)
	},
}

func runScrape(ctx context.Context, stdout bool) {
	cfg := mustLoadConfig(true)
	if cfg.MetricsFilePath == "" && !stdout {
		serviceutil.Fatal("nothing to do", errNoOutput)
	}

	otel, publisher := setupTelemetry(ctx, cfg)
	defer shutdownTelemetry(otel)

	opts := exporter.Options{
		TextfilePath: cfg.MetricsFilePath,
		Publisher:    publisher,
	}
	if stdout {
		opts.Stdout = os.Stdout
	}

	_, err := newExporter(cfg, opts).Run(ctx)
	if err != nil {
		shutdownTelemetry(otel)
		serviceutil.Fatal("scrape failed", err)
	}
}
