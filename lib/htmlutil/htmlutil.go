package htmlutil

import (
	"bytes"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	ErrNoTableHead = errors.New("table has no <thead>")
	ErrNoTableBody = errors.New("table has no <tbody>")
)

// GetText concatenates every text node under node without any trimming.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Table is an html table read as records keyed by header text.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// ParseTable reads the `th` cells of the first <thead> as keys and maps every <tr> of the
// first <tbody> to those keys by position. Cell and header text is kept verbatim. A row
// with fewer cells than headers leaves the trailing keys out, cells past the last header
// are dropped.
func ParseTable(table *goquery.Selection) (Table, error) {
	head := table.Find("thead").First()
	if head.Length() == 0 {
		return Table{}, ErrNoTableHead
	}
	body := table.Find("tbody").First()
	if body.Length() == 0 {
		return Table{}, ErrNoTableBody
	}

	var headers []string
	for _, th := range head.Find("th").Nodes {
		headers = append(headers, GetText(th))
	}

	rows := []map[string]string{}
	body.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := map[string]string{}
		for i, td := range tr.Find("td").Nodes {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = GetText(td)
		}
		rows = append(rows, row)
	})

	return Table{Headers: headers, Rows: rows}, nil
}
