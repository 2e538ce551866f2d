// Package report renders extraction results as XLSX workbooks, CSV and
// aligned text tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

const dateLayout = "2006-01-02"

var invoiceColumns = []string{
	"document", "source", "document_type", "folio", "issue_date",
	"issuer_rut", "issuer_name", "receiver_rut", "receiver_name",
	"net", "exempt", "vat", "grand_total", "status", "line_items",
}

func invoiceRow(document string, inv *model.Invoice) []string {
	return []string{
		document,
		string(inv.Source),
		inv.DocumentType,
		strconv.FormatInt(inv.Folio, 10),
		formatDate(inv.IssueDate),
		inv.Issuer.RUT,
		inv.Issuer.Name,
		inv.Receiver.RUT,
		inv.Receiver.Name,
		strconv.FormatInt(inv.Totals.Net, 10),
		strconv.FormatInt(inv.Totals.Exempt, 10),
		strconv.FormatInt(inv.Totals.VAT, 10),
		strconv.FormatInt(inv.Totals.GrandTotal, 10),
		string(inv.Status),
		strconv.Itoa(len(inv.Items)),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Problem is a document error or invoice warning flattened for output
type Problem struct {
	Document string
	Severity string // "error" or "warning"
	Folio    int64
	Message  string
}

// Problems lists document errors and invoice warnings in input order
func Problems(results []*processor.DocumentResult) []Problem {
	var out []Problem
	for _, r := range results {
		if r.Err != nil {
			out = append(out, Problem{Document: r.Document, Severity: "error", Message: r.Err.Error()})
			continue
		}
		for _, w := range r.Warnings() {
			p := Problem{Document: r.Document, Severity: "warning", Message: w.Reason}
			if w.Partial != nil {
				p.Folio = w.Partial.Folio
			}
			out = append(out, p)
		}
	}
	return out
}

// WriteCSV writes one row per invoice, followed by one row per rejected
// document with only the document and error columns filled.
func WriteCSV(w io.Writer, results []*processor.DocumentResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, invoiceColumns...), "error")); err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			row := make([]string, len(invoiceColumns)+1)
			row[0] = r.Document
			row[len(row)-1] = r.Err.Error()
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, inv := range r.Invoices() {
			if err := cw.Write(append(invoiceRow(r.Document, inv), "")); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTable writes a human readable summary
func WriteTable(w io.Writer, results []*processor.DocumentResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tTYPE\tFOLIO\tDATE\tISSUER\tTOTAL\tITEMS\tSTATUS")
	fmt.Fprintln(tw, "--------\t----\t-----\t----\t------\t-----\t-----\t------")

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.Document, r.Err)
			continue
		}
		for _, inv := range r.Invoices() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%s\n",
				r.Document,
				inv.DocumentType,
				inv.Folio,
				formatDate(inv.IssueDate),
				reconcile.FormatRUT(inv.Issuer.RUT),
				inv.Totals.GrandTotal,
				len(inv.Items),
				inv.Status,
			)
		}
		for _, warn := range r.Warnings() {
			fmt.Fprintf(tw, "%s\tWARNING: %s\t\t\t\t\t\t\n", r.Document, warn.Reason)
		}
	}

	return tw.Flush()
}
