package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/invoice-extractor/internal/processor"
)

// Sheet names
const (
	SheetInvoices  = "Invoices"
	SheetLineItems = "LineItems"
	SheetProblems  = "Problems"
)

var (
	lineItemHeaders = []string{
		"Document", "Folio", "Issuer RUT", "Line", "Code", "Description",
		"Quantity", "Unit Price", "Discount %", "Discount", "Line Total",
	}
	problemHeaders = []string{"Document", "Severity", "Folio", "Message"}
)

// WriteXLSX writes a workbook with one sheet for invoices, one for their
// line items and one for document errors and warnings.
func WriteXLSX(w io.Writer, results []*processor.DocumentResult) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{SheetInvoices, SheetLineItems, SheetProblems} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := writeRow(f, SheetInvoices, 1, toRow(invoiceColumns)); err != nil {
		return err
	}
	if err := writeRow(f, SheetLineItems, 1, toRow(lineItemHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, SheetProblems, 1, toRow(problemHeaders)); err != nil {
		return err
	}

	invRow, itemRow := 2, 2
	for _, r := range results {
		for _, inv := range r.Invoices() {
			row := []interface{}{
				r.Document, string(inv.Source), inv.DocumentType, inv.Folio, formatDate(inv.IssueDate),
				inv.Issuer.RUT, inv.Issuer.Name, inv.Receiver.RUT, inv.Receiver.Name,
				inv.Totals.Net, inv.Totals.Exempt, inv.Totals.VAT, inv.Totals.GrandTotal,
				string(inv.Status), len(inv.Items),
			}
			if err := writeRow(f, SheetInvoices, invRow, row); err != nil {
				return err
			}
			invRow++

			for _, item := range inv.Items {
				var pct, amt interface{}
				if item.DiscountPercent != nil {
					pct = item.DiscountPercent.InexactFloat64()
				}
				if item.DiscountAmount != nil {
					amt = *item.DiscountAmount
				}
				row := []interface{}{
					r.Document, inv.Folio, inv.Issuer.RUT, item.Number, item.Code, item.Description,
					item.Quantity, item.UnitPrice, pct, amt, item.Total,
				}
				if err := writeRow(f, SheetLineItems, itemRow, row); err != nil {
					return err
				}
				itemRow++
			}
		}
	}

	errStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "9A0511"}})
	if err != nil {
		return err
	}
	for i, p := range Problems(results) {
		rowNum := i + 2
		var folio interface{}
		if p.Folio > 0 {
			folio = p.Folio
		}
		if err := writeRow(f, SheetProblems, rowNum, []interface{}{p.Document, p.Severity, folio, p.Message}); err != nil {
			return err
		}
		if p.Severity == "error" {
			cell, _ := excelize.CoordinatesToCellName(2, rowNum)
			if err := f.SetCellStyle(SheetProblems, cell, cell, errStyle); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
