// Package htmltable reads timetables saved as HTML pages.
//
// Cells spanning several rows or columns are expanded so that every value
// stays at the column index it has in the rendered table: the spanning
// cell's text sits in its top-left position and the covered positions are
// empty, the same shape a spreadsheet gives merged cells.
package htmltable

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNoTable is returned when a document contains no table.
var ErrNoTable = errors.New("no table found")

// maxSpan caps rowspan and colspan values taken from the document.
const maxSpan = 1000

// Read parses an HTML document and returns the grid of its largest table,
// by row count. The document's declared charset is honored.
func Read(r io.Reader) ([][]string, error) {
	tables, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	best := tables[0]
	for _, t := range tables[1:] {
		if len(t) > len(best) {
			best = t
		}
	}
	return best, nil
}

// ReadAll returns the grids of all top-level tables in document order.
// Tables nested inside cells contribute only their text to the enclosing cell.
func ReadAll(r io.Reader) ([][][]string, error) {
	utf8Reader, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var tables [][][]string
	for _, n := range findTables(doc) {
		tables = append(tables, grid(tableRows(n)))
	}
	if len(tables) == 0 {
		return nil, ErrNoTable
	}
	return tables, nil
}

// findTables returns table elements that are not nested in another table.
func findTables(n *html.Node) []*html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		return []*html.Node{n}
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findTables(c)...)
	}
	return out
}

// tableRows collects tr elements of a table, through thead, tbody and tfoot.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

type cell struct {
	text    string
	rowSpan int
	colSpan int
}

func rowCells(tr *html.Node) []cell {
	var cells []cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cl := cell{text: textContent(c), rowSpan: 1, colSpan: 1}
		for _, attr := range c.Attr {
			switch attr.Key {
			case "rowspan":
				cl.rowSpan = spanValue(attr.Val)
			case "colspan":
				cl.colSpan = spanValue(attr.Val)
			}
		}
		cells = append(cells, cl)
	}
	return cells
}

func spanValue(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// grid lays out rows, reserving positions covered by earlier rowspans.
func grid(rows []*html.Node) [][]string {
	out := make([][]string, 0, len(rows))
	pending := make(map[int]int) // column -> rows still covered from above

	for _, tr := range rows {
		var vals []string
		col := 0
		skipCovered := func() {
			for pending[col] > 0 {
				pending[col]--
				vals = append(vals, "")
				col++
			}
		}

		for _, c := range rowCells(tr) {
			skipCovered()
			for k := 0; k < c.colSpan; k++ {
				text := ""
				if k == 0 {
					text = c.text
				}
				vals = append(vals, text)
				if c.rowSpan > 1 {
					pending[col] = c.rowSpan - 1
				}
				col++
			}
		}

		// Covered columns to the right of the last cell.
		for last := lastPending(pending); col <= last; col++ {
			if pending[col] > 0 {
				pending[col]--
			}
			vals = append(vals, "")
		}

		out = append(out, vals)
	}
	return out
}

func lastPending(pending map[int]int) int {
	last := -1
	for col, n := range pending {
		if n > 0 && col > last {
			last = col
		}
	}
	return last
}

// textContent returns the text of a node with whitespace collapsed.
// Line breaks count as whitespace; script and style content is dropped.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "template":
				return
			case "br", "p", "div", "tr", "li":
				b.WriteByte(' ')
			case "td", "th":
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
