package commands

import (
	"log/slog"

	"corepool-exporter/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Deletes the persisted client and cookies, the next scrape passes the challenge and logs in again.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(false)
		store := newStore(cfg)
		err := store.Reset()
		if err != nil {
			serviceutil.Fatal("failed to reset session state", err)
		}
		slog.Info("session state removed", "client", store.ClientPath(), "cookies", store.CookiesPath())
	},
}
