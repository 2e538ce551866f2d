// Package invoicelib provides a public API for extracting Chilean tax
// documents (DTE) from XML, HTML table and delimited text exports.
//
// Example usage:
//
//	proc := invoicelib.NewProcessor(invoicelib.DefaultOptions())
//	res, err := proc.Process(ctx, "ventas.xml", reader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, inv := range res.Invoices {
//	    fmt.Println(inv.Folio, inv.Totals.GrandTotal)
//	}
package invoicelib

import "github.com/rezonia/invoice-extractor/internal/model"

// Re-export core types for public API
type (
	Invoice      = model.Invoice
	LineItem     = model.LineItem
	Party        = model.Party
	Totals       = model.Totals
	Status       = model.Status
	Source       = model.Source
	DedupKey     = model.DedupKey
	ParseWarning = model.ParseWarning
)

// Re-export status constants
const (
	StatusComplete   = model.StatusComplete
	StatusIncomplete = model.StatusIncomplete
)

// Re-export source constants
const (
	SourceXML  = model.SourceXML
	SourceHTML = model.SourceHTML
	SourceText = model.SourceText
)

// Re-export error types
type (
	ParseError      = model.ParseError
	ValidationError = model.ValidationError
)

// Re-export error kinds
var (
	ErrUnsupportedFormat = model.ErrUnsupportedFormat
	ErrNoInvoicesFound   = model.ErrNoInvoicesFound
	ErrXMLMalformed      = model.ErrXMLMalformed
	ErrIncomplete        = model.ErrIncomplete
	ErrNoLineItems       = model.ErrNoLineItems
)
