package commands

import (
	"fmt"
	"io"
	"os"

	"corepool-exporter/internal/exporter"
	"corepool-exporter/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Scrapes core-pool.com once and prints the results as tables without writing metrics.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(true)
		result, err := newExporter(cfg, exporter.Options{}).Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		renderResult(os.Stdout, result)
	},
}

func renderResult(w io.Writer, result exporter.Result) {
	account := table.NewWriter()
	account.SetOutputMirror(w)
	account.SetStyle(table.StyleLight)
	account.SetTitle("Account")
	account.AppendHeader(table.Row{"Field", "Value"})
	account.AppendRows([]table.Row{
		{"Unpaid balance (XCH)", result.Dashboard.UnpaidBalance},
		{"Plot points", result.Dashboard.PlotPoints},
		{"Total plots", result.Dashboard.TotalPlots},
		{"Blocks found", result.Dashboard.BlocksFound},
	})
	account.Render()

	farmers := table.NewWriter()
	farmers.SetOutputMirror(w)
	farmers.SetStyle(table.StyleLight)
	farmers.SetTitle("Farmers")
	farmers.AppendHeader(table.Row{"Name", "Status", "Raw status"})
	for _, farmer := range result.Dashboard.Farmers {
		farmers.AppendRow(table.Row{farmer.Name, farmer.Status.String(), fmt.Sprintf("%q", farmer.RawStatus)})
	}
	farmers.Render()

	pool := table.NewWriter()
	pool.SetOutputMirror(w)
	pool.SetStyle(table.StyleLight)
	pool.SetTitle("Pool")
	pool.AppendHeader(table.Row{"Field", "Value"})
	pool.AppendRows([]table.Row{
		{"Active farmers", result.Pool.ActiveFarmers},
		{"Farmer plots", result.Pool.FarmerPlots},
		{"Total size (PiB)", result.Pool.TotalPoolSizePiB},
	})
	pool.Render()
}
