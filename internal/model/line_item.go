package model

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
)

// LineItem is one billable row of an invoice
type LineItem struct {
	Number          int              `json:"sequence_number"`
	Code            string           `json:"code,omitempty"`
	Description     string           `json:"description"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       int64            `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *int64           `json:"discount_amount,omitempty"`
	Total           int64            `json:"line_total"`
}

// Calculate fills Total from quantity and unit price when the source did not
// provide one. Percent discount takes precedence over a discount amount.
func (item *LineItem) Calculate() {
	if item.Total > 0 || item.Quantity <= 0 || item.UnitPrice <= 0 {
		return
	}
	gross := dec.LineAmount(item.Quantity, item.UnitPrice)
	item.Total = dec.ApplyDiscount(gross, item.DiscountPercent, item.DiscountAmount)
}

// Clone returns a copy that shares no pointers with the original
func (item LineItem) Clone() LineItem {
	out := item
	if item.DiscountPercent != nil {
		pct := *item.DiscountPercent
		out.DiscountPercent = &pct
	}
	if item.DiscountAmount != nil {
		amt := *item.DiscountAmount
		out.DiscountAmount = &amt
	}
	return out
}
