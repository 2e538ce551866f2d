// Package tabular extracts invoices from line oriented exports: tab, semicolon
// or comma delimited text, and the lines produced by flattening HTML tables.
//
// Each invoice is a header line of field labels, a line of values and an
// optional detail section of line items:
//
//	Tipo	Folio	Fecha
//	33	101	2024-01-10
//	DETALLE
//	Item	Descripcion	Cantidad	Precio
//	1	Producto	2	500
package tabular

import (
	"encoding/csv"
	"strings"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Parse runs the line state machine over lines. Invoices are returned in
// the order their header lines appear. It fails with model.ErrNoInvoicesFound
// when no invoice header line is present.
func Parse(lines []string) ([]model.Result, error) {
	var (
		s         state = seeking{}
		results   []model.Result
		sawHeader bool
	)

	for _, line := range lines {
		for consumed := false; !consumed; {
			var out []model.Result
			s, out, consumed = step(s, line)
			results = append(results, out...)
			if _, ok := s.(headerCaptured); ok {
				sawHeader = true
			}
		}
	}
	results = append(results, flush(s)...)

	if !sawHeader {
		return nil, model.NewParseError(model.ErrNoInvoicesFound, "text", "no invoice header line found", nil)
	}
	return results, nil
}

// Lines splits delimited text into tab separated lines. Content without any
// tab but with semicolons is treated as semicolon delimited. Content with
// neither is read as comma separated values, where amounts with a decimal
// comma must be quoted.
func Lines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	if strings.Contains(content, "\t") {
		return lines
	}

	switch {
	case strings.Contains(content, ";"):
		for i, line := range lines {
			lines[i] = strings.ReplaceAll(line, ";", "\t")
		}
	case strings.Contains(content, ","):
		for i, line := range lines {
			lines[i] = commaLine(line)
		}
	}
	return lines
}

func commaLine(line string) string {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		// blank lines end a detail section and must survive
		return strings.ReplaceAll(line, ",", "\t")
	}
	return strings.Join(fields, "\t")
}
