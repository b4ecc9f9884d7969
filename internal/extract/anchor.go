package extract

import (
	"strconv"
	"strings"
)

// anchor locates a value by the literal text right before and right after it.
type anchor struct {
	field      string
	prefix     string
	terminator string
}

var (
	unpaidBalanceAnchor = anchor{
		field:      "unpaid_balance",
		prefix:     `Your unpaid balance">`,
		terminator: " XCH",
	}
	plotPointsAnchor = anchor{
		field:      "plot_points",
		prefix:     `your plot count">`,
		terminator: " PlotPoints",
	}
	totalPlotsAnchor = anchor{
		field:      "total_plots",
		prefix:     `Total Plot Count</div> <div class="h3">`,
		terminator: " </div>",
	}
	blocksFoundAnchor = anchor{
		field:      "blocks_found",
		prefix:     `blocks earned today">`,
		terminator: " Block",
	}

	activeFarmersAnchor = anchor{
		field:      "active_farmers",
		prefix:     `activeMinerCount"> `,
		terminator: " </a>",
	}
	farmerPlotsAnchor = anchor{
		field:      "farmer_plots",
		prefix:     `minerPlots"> `,
		terminator: " </a>",
	}
	totalPoolSizeAnchor = anchor{
		field:      "total_pool_size_pib",
		prefix:     `totalPoolPlotSizeTB"> `,
		terminator: " PiB </a>",
	}
)

func (a anchor) fail(err error) *MalformedResponseError {
	return &MalformedResponseError{Field: a.field, Anchor: a.prefix, Err: err}
}

// text returns what sits between the first occurrence of the prefix and the terminator.
// The search for the terminator does not go past a second occurrence of the prefix.
func (a anchor) text(body string) (string, error) {
	_, after, found := strings.Cut(body, a.prefix)
	if !found {
		return "", a.fail(errMissingAnchor)
	}
	fragment, _, _ := strings.Cut(after, a.prefix)
	value, _, found := strings.Cut(fragment, a.terminator)
	if !found {
		return "", a.fail(errMissingTerminator)
	}
	return value, nil
}

func (a anchor) numeric(body string) (string, error) {
	value, err := a.text(body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ReplaceAll(value, ",", "")), nil
}

func (a anchor) integer(body string) (int64, error) {
	value, err := a.numeric(body)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, a.fail(err)
	}
	return n, nil
}

func (a anchor) decimal(body string) (float64, error) {
	value, err := a.numeric(body)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, a.fail(err)
	}
	return n, nil
}
