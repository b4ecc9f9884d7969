package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func firstTable(t testing.TB, doc string) *goquery.Selection {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	return parsed.Find("table").First()
}

func TestParseTable(t *testing.T) {
	table := firstTable(t, `
<table>
  <thead><tr><th>Name</th><th>Status</th><th>Plots</th></tr></thead>
  <tbody>
    <tr><td>farmer-1</td><td><span> Online </span></td><td>10</td></tr>
    <tr><td>farmer-2</td></tr>
    <tr><td>farmer-3</td><td> Offline </td><td>3</td><td>extra</td></tr>
  </tbody>
</table>
<table><thead><tr><th>Other</th></tr></thead><tbody></tbody></table>`)

	parsed, err := ParseTable(table)
	require.NoError(t, err)

	expected := Table{
		Headers: []string{"Name", "Status", "Plots"},
		Rows: []map[string]string{
			{"Name": "farmer-1", "Status": " Online ", "Plots": "10"},
			{"Name": "farmer-2"},
			{"Name": "farmer-3", "Status": " Offline ", "Plots": "3"},
		},
	}
	if diff := cmp.Diff(expected, parsed); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseTableMissingSections(t *testing.T) {
	_, err := ParseTable(firstTable(t, `<table><caption>x</caption></table>`))
	require.ErrorIs(t, err, ErrNoTableHead)

	_, err = ParseTable(firstTable(t, `<table><thead><tr><th>Name</th></tr></thead></table>`))
	require.ErrorIs(t, err, ErrNoTableBody)
}

func TestGetTextKeepsWhitespace(t *testing.T) {
	table := firstTable(t, `<table><tbody><tr><td> a <b>b</b> </td></tr></tbody></table>`)
	require.Equal(t, " a b ", GetText(table.Find("td").Nodes[0]))
}
