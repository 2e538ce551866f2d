// Package html flattens invoice tables from legacy HTML exports into
// tab-delimited lines that the tabular parser understands.
package html

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/heuristic"
)

type row []string

func (r row) line() string {
	return strings.Join(r, "\t")
}

func (r row) text() string {
	return strings.Join(r, " ")
}

func (r row) empty() bool {
	return len(heuristic.NonEmpty(r)) == 0
}

// Flatten parses every <table> in the document and returns the rows of the
// invoice-bearing ones as tab-delimited lines. Tables without a document
// type and number marker are skipped. A blank line separates tables.
func Flatten(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, model.NewParseError(model.ErrUnsupportedFormat, "html", "failed to parse markup", err)
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, model.NewParseError(model.ErrUnsupportedFormat, "html", "document has no tables", nil)
	}

	// <br> separates words visually but Text() would glue them together
	doc.Find("br").ReplaceWithHtml(" ")

	var lines []string
	tables.Each(func(_ int, table *goquery.Selection) {
		rows := ownRows(table)
		if !isInvoiceTable(rows) {
			return
		}
		lines = append(lines, flattenRows(rows)...)
		lines = append(lines, "")
	})

	return lines, nil
}

// ownRows returns the rows whose nearest enclosing table is table
func ownRows(table *goquery.Selection) []row {
	var rows []row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}
		var cells row
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cellText(cell))
		})
		rows = append(rows, cells)
	})
	return rows
}

// cellText returns the text of cell without the text of tables nested in it.
// Nested tables are flattened on their own.
func cellText(cell *goquery.Selection) string {
	if cell.Find("table").Length() == 0 {
		return heuristic.CollapseSpaces(cell.Text())
	}
	own := cell.Clone()
	own.Find("table").Remove()
	return heuristic.CollapseSpaces(own.Text())
}

func isInvoiceTable(rows []row) bool {
	for _, r := range rows {
		if heuristic.IsInvoiceHeaderText(r.text()) {
			return true
		}
	}
	return false
}

func flattenRows(rows []row) []string {
	var (
		lines        []string
		inDetail     bool
		expectHeader bool
	)

	for i, r := range rows {
		switch {
		case i == 0:
			lines = append(lines, r.line())

		case expectHeader:
			if r.empty() {
				continue
			}
			lines = append(lines, r.line())
			expectHeader = false

		case inDetail:
			if r.empty() {
				// blank line tells the tabular parser the detail ended
				lines = append(lines, "")
				inDetail = false
				continue
			}
			lines = append(lines, r.line())

		case heuristic.IsDetailSectionText(r.text()):
			lines = append(lines, heuristic.DetailMarker)
			inDetail = true
			if heuristic.IsDetailHeaderText(r.text()) {
				lines = append(lines, r.line())
			} else {
				expectHeader = true
			}

		case !r.empty():
			lines = append(lines, r.line())
		}
	}

	return lines
}
