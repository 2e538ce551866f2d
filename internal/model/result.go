package model

import "errors"

// ParseWarning describes an invoice that could not be produced.
// Partial holds whatever was extracted before the defect was found.
type ParseWarning struct {
	Reason  string   `json:"reason"`
	Kind    error    `json:"-"`
	Partial *Invoice `json:"partial_data,omitempty"`
}

// IsIncomplete returns true if the warning is about missing mandatory fields
func (w *ParseWarning) IsIncomplete() bool {
	return errors.Is(w.Kind, ErrIncomplete)
}

// Result is one entry produced by a parser: an invoice or a warning, never both
type Result struct {
	Invoice *Invoice      `json:"invoice,omitempty"`
	Warning *ParseWarning `json:"warning,omitempty"`
}

// InvoiceResult wraps a parsed invoice
func InvoiceResult(inv Invoice) Result {
	return Result{Invoice: &inv}
}

// WarningResult wraps a warning with its kind and optional partial invoice
func WarningResult(kind error, reason string, partial *Invoice) Result {
	return Result{Warning: &ParseWarning{Reason: reason, Kind: kind, Partial: partial}}
}

// IsInvoice returns true if the result carries an invoice
func (r Result) IsInvoice() bool {
	return r.Invoice != nil
}
