package model

import "time"

// Status reports whether an invoice survived reconciliation with a usable total
type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
)

// Source identifies the input shape an invoice was extracted from
type Source string

const (
	SourceXML  Source = "xml"
	SourceHTML Source = "html"
	SourceText Source = "text"
)

// Invoice is one tax document (DTE)
type Invoice struct {
	DocumentType string     `json:"document_type"`
	Folio        int64      `json:"folio"`
	IssueDate    time.Time  `json:"issue_date"`
	Issuer       Party      `json:"issuer"`
	Receiver     Party      `json:"receiver"`
	Totals       Totals     `json:"totals"`
	Items        []LineItem `json:"line_items"`
	Status       Status     `json:"status,omitempty"`
	Source       Source     `json:"source,omitempty"`

	// ParsedItemsTotal is the running sum of line totals seen while parsing.
	ParsedItemsTotal int64 `json:"-"`
}

// Party is an issuer or receiver
type Party struct {
	RUT      string `json:"rut"`
	Name     string `json:"name"`
	Activity string `json:"activity,omitempty"`
	Address  string `json:"address,omitempty"`
	Comuna   string `json:"comuna,omitempty"`
	City     string `json:"city,omitempty"`
}

// IsEmpty returns true if no party field was extracted
func (p Party) IsEmpty() bool {
	return p == Party{}
}

// Totals holds invoice amounts in whole pesos
type Totals struct {
	Net        int64 `json:"net"`
	Exempt     int64 `json:"exempt"`
	VAT        int64 `json:"vat"`
	GrandTotal int64 `json:"grand_total"`
}

// ItemsTotal sums the line totals of all items
func (inv *Invoice) ItemsTotal() int64 {
	var sum int64
	for _, item := range inv.Items {
		sum += item.Total
	}
	return sum
}

// IsIncomplete returns true if reconciliation could not establish a total
func (inv *Invoice) IsIncomplete() bool {
	return inv.Status == StatusIncomplete
}

// Clone returns a deep copy so callers can modify items freely
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		for i, item := range inv.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// DedupKey identifies a stored invoice for the persistence layer
type DedupKey struct {
	CompanyID   string `json:"company_id"`
	Folio       int64  `json:"folio"`
	IssuerRUT   string `json:"issuer_rut"`
	ReceiverRUT string `json:"receiver_rut"`
}

// DedupKey builds the lookup key used to detect already stored invoices.
// Folio alone is not unique, so issuer and receiver RUTs are part of it.
func (inv *Invoice) DedupKey(companyID string) DedupKey {
	return DedupKey{
		CompanyID:   companyID,
		Folio:       inv.Folio,
		IssuerRUT:   inv.Issuer.RUT,
		ReceiverRUT: inv.Receiver.RUT,
	}
}
