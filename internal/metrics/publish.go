package metrics

import (
	"context"
	"errors"

	"corepool-exporter/internal/components/telemetry"
	"corepool-exporter/internal/extract"
)

const (
	UnpaidBalance    = "corepool_unpaid_balance"
	PlotPoints       = "corepool_plot_points"
	TotalPlots       = "corepool_total_plots"
	BlocksFound      = "corepool_blocks_found"
	FarmerStatus     = "corepool_farmer_status"
	ActiveFarmers    = "corepool_active_farmers"
	FarmerPlots      = "corepool_farmer_plots"
	TotalPoolSizePiB = "corepool_total_pool_size_pib"

	FarmerLabel = "farmer"
)

const (
	report_publish_dashboard = "publish.dashboard"
)

type sample struct {
	name  string
	help  string
	value float64
}

func publishAll(ctx context.Context, pub Publisher, samples []sample) error {
	var errs []error
	for _, s := range samples {
		err := pub.Gauge(ctx, s.name, s.help, nil, s.value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishDashboard publishes the account gauges and one farmer status series per farmer,
// 1 for online and 0 for offline. Farmers with a status that was not recognized are
// reported and left out rather than published as offline.
func PublishDashboard(ctx context.Context, pub Publisher, record extract.DashboardRecord, tel telemetry.API) error {
	errs := []error{publishAll(ctx, pub, []sample{
		{name: UnpaidBalance, help: "unpaid XCH balance", value: record.UnpaidBalance},
		{name: PlotPoints, help: "current accumulate plot points", value: float64(record.PlotPoints)},
		{name: TotalPlots, help: "account total plots", value: float64(record.TotalPlots)},
		{name: BlocksFound, help: "current accumulate blocks found", value: float64(record.BlocksFound)},
	})}

	for _, farmer := range record.Farmers {
		var value float64
		switch farmer.Status {
		case extract.StatusOnline:
			value = 1
		case extract.StatusOffline:
			value = 0
		default:
			tel.ReportWarning(
				report_publish_dashboard,
				"unrecognized farmer status",
				"farmer", farmer.Name,
				"status", farmer.RawStatus,
			)
			continue
		}
		err := pub.Gauge(ctx, FarmerStatus, "1 if the farmer is online", map[string]string{FarmerLabel: farmer.Name}, value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func PublishPool(ctx context.Context, pub Publisher, record extract.PoolRecord) error {
	return publishAll(ctx, pub, []sample{
		{name: ActiveFarmers, help: "pool total active farmers", value: float64(record.ActiveFarmers)},
		{name: FarmerPlots, help: "pool total plot count", value: float64(record.FarmerPlots)},
		{name: TotalPoolSizePiB, help: "pool total plot size in PiB", value: record.TotalPoolSizePiB},
	})
}
