package extract

import "fmt"

type FarmerStatus int

const (
	StatusUnknown FarmerStatus = iota
	StatusOnline
	StatusOffline
)

func (s FarmerStatus) String() string {
	switch s {
	case StatusOnline:
		return "Online"
	case StatusOffline:
		return "Offline"
	case StatusUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("FarmerStatus(%d)", int(s))
	}
}

type FarmerRow struct {
	Name   string
	Status FarmerStatus
	// RawStatus is the status cell exactly as the page had it.
	RawStatus string
}

// DashboardRecord is the account summary on the dashboard page.
type DashboardRecord struct {
	UnpaidBalance float64
	PlotPoints    int64
	TotalPlots    int64
	BlocksFound   int64
	Farmers       []FarmerRow
}

// PoolRecord is the pool-wide summary on the site root.
type PoolRecord struct {
	ActiveFarmers    int64
	FarmerPlots      int64
	TotalPoolSizePiB float64
}
