package extract

import (
	"errors"
	"strings"
	"testing"

	"corepool-exporter/internal/corepool/corepooltest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const minimalDashboard = `<div title="Your unpaid balance">12.345 XCH</div>` +
	`<div title="your plot count">6789 PlotPoints</div>` +
	`<div>Total Plot Count</div> <div class="h3">42 </div>` +
	`<div title="blocks earned today">3 Block</div>`

const minimalPool = `<a id="activeMinerCount"> 1,234 </a>` +
	`<a id="minerPlots"> 5,678 </a>` +
	`<a id="totalPoolPlotSizeTB"> 9.87 PiB </a>`

func TestExtractDashboardMinimal(t *testing.T) {
	record, err := ExtractDashboard(minimalDashboard)
	require.NoError(t, err)

	expected := DashboardRecord{
		UnpaidBalance: 12.345,
		PlotPoints:    6789,
		TotalPlots:    42,
		BlocksFound:   3,
	}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Fatalf("dashboard mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPoolMinimal(t *testing.T) {
	record, err := ExtractPool(minimalPool)
	require.NoError(t, err)
	require.Equal(t, PoolRecord{ActiveFarmers: 1234, FarmerPlots: 5678, TotalPoolSizePiB: 9.87}, record)
}

func TestExtractDashboardPage(t *testing.T) {
	record, err := ExtractDashboard(corepooltest.DashboardPage)
	require.NoError(t, err)

	expected := DashboardRecord{
		UnpaidBalance: 12.345,
		PlotPoints:    6789,
		TotalPlots:    42,
		BlocksFound:   3,
		Farmers: []FarmerRow{
			{Name: "harvester-01", Status: StatusOnline, RawStatus: " Online "},
			{Name: "harvester-02", Status: StatusOffline, RawStatus: " Offline "},
			{Name: "harvester-03", Status: StatusUnknown, RawStatus: " Syncing "},
		},
	}
	if diff := cmp.Diff(expected, record); diff != "" {
		t.Fatalf("dashboard mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPoolPage(t *testing.T) {
	record, err := ExtractPool(corepooltest.HomePage)
	require.NoError(t, err)
	require.Equal(t, PoolRecord{ActiveFarmers: 1234, FarmerPlots: 5678, TotalPoolSizePiB: 9.87}, record)
}

func TestMissingAnchor(t *testing.T) {
	dashboardAnchors := []anchor{unpaidBalanceAnchor, plotPointsAnchor, totalPlotsAnchor, blocksFoundAnchor}
	poolAnchors := []anchor{activeFarmersAnchor, farmerPlotsAnchor, totalPoolSizeAnchor}

	for _, a := range dashboardAnchors {
		t.Run(a.field, func(t *testing.T) {
			body := strings.Replace(corepooltest.DashboardPage, a.prefix, "renamed", 1)
			record, err := ExtractDashboard(body)
			requireMalformed(t, err, a.field, errMissingAnchor)
			require.Equal(t, DashboardRecord{}, record)
		})
	}
	for _, a := range poolAnchors {
		t.Run(a.field, func(t *testing.T) {
			body := strings.Replace(corepooltest.HomePage, a.prefix, "renamed", 1)
			record, err := ExtractPool(body)
			requireMalformed(t, err, a.field, errMissingAnchor)
			require.Equal(t, PoolRecord{}, record)
		})
	}
}

func TestMissingTerminator(t *testing.T) {
	body := strings.Replace(minimalDashboard, "12.345 XCH", "12.345 BTC", 1)
	_, err := ExtractDashboard(body)
	requireMalformed(t, err, "unpaid_balance", errMissingTerminator)
}

func TestUnparsableNumber(t *testing.T) {
	body := strings.Replace(minimalPool, " 1,234 ", " many ", 1)
	_, err := ExtractPool(body)
	requireMalformed(t, err, "active_farmers", nil)
}

func TestTerminatorPastSecondPrefix(t *testing.T) {
	// the value has to end before the anchor shows up again
	body := `<a id="activeMinerCount"> 12` + `<a id="activeMinerCount"> 34 </a>` +
		`<a id="minerPlots"> 1 </a><a id="totalPoolPlotSizeTB"> 1 PiB </a>`
	_, err := ExtractPool(body)
	requireMalformed(t, err, "active_farmers", errMissingTerminator)
}

func TestFarmerTable(t *testing.T) {
	table := []struct {
		name     string
		table    string
		expected []FarmerRow
		err      bool
	}{
		{
			name:     "no table",
			table:    "",
			expected: nil,
		},
		{
			name:     "empty body",
			table:    `<table><thead><tr><th>Name</th><th>Status</th></tr></thead><tbody></tbody></table>`,
			expected: nil,
		},
		{
			name: "short row",
			table: `<table><thead><tr><th>Name</th><th>Status</th></tr></thead>` +
				`<tbody><tr><td>solo</td></tr></tbody></table>`,
			expected: []FarmerRow{{Name: "solo", Status: StatusUnknown}},
		},
		{
			name: "extra cells and reordered columns",
			table: `<table><thead><tr><th>Status</th><th>Name</th></tr></thead>` +
				`<tbody><tr><td> Offline </td><td>rig</td><td>extra</td></tr></tbody></table>`,
			expected: []FarmerRow{{Name: "rig", Status: StatusOffline, RawStatus: " Offline "}},
		},
		{
			name: "only the first table",
			table: `<table><thead><tr><th>Name</th><th>Status</th></tr></thead>` +
				`<tbody><tr><td>first</td><td> Online </td></tr></tbody></table>` +
				`<table><thead><tr><th>Name</th></tr></thead><tbody><tr><td>second</td></tr></tbody></table>`,
			expected: []FarmerRow{{Name: "first", Status: StatusOnline, RawStatus: " Online "}},
		},
		{
			name:  "no name column",
			table: `<table><thead><tr><th>Farmer</th></tr></thead><tbody><tr><td>rig</td></tr></tbody></table>`,
			err:   true,
		},
		{
			name:  "no head",
			table: `<table><tbody><tr><td>rig</td></tr></tbody></table>`,
			err:   true,
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			record, err := ExtractDashboard(minimalDashboard + row.table)
			if row.err {
				requireMalformed(t, err, "farmers", nil)
				return
			}
			require.NoError(t, err)
			require.Equal(t, row.expected, record.Farmers)
		})
	}
}

func TestParseStatus(t *testing.T) {
	table := []struct {
		input    string
		expected FarmerStatus
	}{
		{input: " Online ", expected: StatusOnline},
		{input: " Offline ", expected: StatusOffline},
		{input: "Online", expected: StatusUnknown},
		{input: "Offline", expected: StatusUnknown},
		{input: " online ", expected: StatusUnknown},
		{input: "", expected: StatusUnknown},
		{input: " Syncing ", expected: StatusUnknown},
	}

	for _, row := range table {
		require.Equal(t, row.expected, ParseStatus(row.input), "input %q", row.input)
	}
}

func TestExtractionIsIdempotent(t *testing.T) {
	first, err := ExtractDashboard(corepooltest.DashboardPage)
	require.NoError(t, err)
	second, err := ExtractDashboard(corepooltest.DashboardPage)
	require.NoError(t, err)
	require.Equal(t, first, second)

	firstPool, err := ExtractPool(corepooltest.HomePage)
	require.NoError(t, err)
	secondPool, err := ExtractPool(corepooltest.HomePage)
	require.NoError(t, err)
	require.Equal(t, firstPool, secondPool)
}

func requireMalformed(t *testing.T, err error, field string, cause error) {
	t.Helper()
	require.ErrorIs(t, err, ErrMalformedResponse)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, field, malformed.Field)
	require.NotEmpty(t, malformed.Anchor)
	require.Contains(t, err.Error(), field)
	if cause != nil {
		require.ErrorIs(t, err, cause)
	}
}
