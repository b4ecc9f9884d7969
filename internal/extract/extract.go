// Package extract reads the account and pool statistics out of core-pool.com pages.
//
// Values are found by the literal markup around them rather than by walking the html,
// so any change to that markup makes extraction fail with ErrMalformedResponse instead
// of silently producing wrong numbers. The one exception is the farmer table, which is
// read with goquery.
package extract

import (
	"errors"
	"strings"

	"corepool-exporter/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	farmersField  = "farmers"
	tableAnchor   = "<table>"
	nameColumn    = "Name"
	statusColumn  = "Status"
	onlineStatus  = " Online "
	offlineStatus = " Offline "
)

var errNoNameColumn = errors.New("farmer table has no Name column")

// ExtractDashboard returns the account summary of a dashboard page. Either every field
// is extracted or an error is returned, never a partial record.
func ExtractDashboard(body string) (DashboardRecord, error) {
	unpaidBalance, err := unpaidBalanceAnchor.decimal(body)
	if err != nil {
		return DashboardRecord{}, err
	}
	plotPoints, err := plotPointsAnchor.integer(body)
	if err != nil {
		return DashboardRecord{}, err
	}
	totalPlots, err := totalPlotsAnchor.integer(body)
	if err != nil {
		return DashboardRecord{}, err
	}
	blocksFound, err := blocksFoundAnchor.integer(body)
	if err != nil {
		return DashboardRecord{}, err
	}
	farmers, err := extractFarmers(body)
	if err != nil {
		return DashboardRecord{}, err
	}

	return DashboardRecord{
		UnpaidBalance: unpaidBalance,
		PlotPoints:    plotPoints,
		TotalPlots:    totalPlots,
		BlocksFound:   blocksFound,
		Farmers:       farmers,
	}, nil
}

// ExtractPool returns the pool-wide summary of the site root.
func ExtractPool(body string) (PoolRecord, error) {
	activeFarmers, err := activeFarmersAnchor.integer(body)
	if err != nil {
		return PoolRecord{}, err
	}
	farmerPlots, err := farmerPlotsAnchor.integer(body)
	if err != nil {
		return PoolRecord{}, err
	}
	totalPoolSize, err := totalPoolSizeAnchor.decimal(body)
	if err != nil {
		return PoolRecord{}, err
	}

	return PoolRecord{
		ActiveFarmers:    activeFarmers,
		FarmerPlots:      farmerPlots,
		TotalPoolSizePiB: totalPoolSize,
	}, nil
}

// ParseStatus maps the text of a status cell to a FarmerStatus. The match is exact,
// surrounding whitespace included.
func ParseStatus(text string) FarmerStatus {
	switch text {
	case onlineStatus:
		return StatusOnline
	case offlineStatus:
		return StatusOffline
	default:
		return StatusUnknown
	}
}

func extractFarmers(body string) ([]FarmerRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &MalformedResponseError{Field: farmersField, Anchor: tableAnchor, Err: err}
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil
	}

	parsed, err := htmlutil.ParseTable(table)
	if err != nil {
		return nil, &MalformedResponseError{Field: farmersField, Anchor: tableAnchor, Err: err}
	}
	if len(parsed.Rows) == 0 {
		return nil, nil
	}
	hasName := false
	for _, header := range parsed.Headers {
		if header == nameColumn {
			hasName = true
			break
		}
	}
	if !hasName {
		return nil, &MalformedResponseError{Field: farmersField, Anchor: tableAnchor, Err: errNoNameColumn}
	}

	farmers := make([]FarmerRow, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		name, ok := row[nameColumn]
		if !ok {
			// a row without cells, like a spacer
			continue
		}
		status := row[statusColumn]
		farmers = append(farmers, FarmerRow{
			Name:      name,
			Status:    ParseStatus(status),
			RawStatus: status,
		})
	}
	return farmers, nil
}
