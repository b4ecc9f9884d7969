package commands

import (
	"context"
	"fmt"
	"os"

	"corepool-exporter/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corepool-exporter",
	Short: "corepool-exporter scrapes core-pool.com account and pool statistics into prometheus metrics.",
	Long: `corepool-exporter logs into core-pool.com, reads the account dashboard and the pool
statistics and writes them as gauges to a node_exporter textfile.

Without a subcommand it runs a single scrape.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, *verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runScrape(cmd.Context(), false)
	},
}

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "corepool.json5", "The json5 config file, a corepool.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every http exchange to this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
