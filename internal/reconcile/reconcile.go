// Package reconcile makes parsed invoices internally consistent before they
// leave the engine: totals are repaired from line items and invoices
// without detail get a single placeholder line.
package reconcile

import "github.com/rezonia/invoice-extractor/internal/model"

// Placeholder line item values
const (
	PlaceholderCode        = "SIN-DETALLE"
	PlaceholderDescription = "Documento sin detalle"
)

// Reconcile returns a repaired copy of inv. It is idempotent and never
// modifies its argument.
func Reconcile(inv model.Invoice) model.Invoice {
	out := inv.Clone()

	if out.Totals.GrandTotal <= 0 && len(out.Items) > 0 {
		out.Totals.GrandTotal = out.ItemsTotal()
	}

	if len(out.Items) == 0 {
		if out.Totals.GrandTotal <= 0 && out.ParsedItemsTotal > 0 {
			out.Totals.GrandTotal = out.ParsedItemsTotal
		}
		if out.Totals.GrandTotal > 0 {
			out.Items = []model.LineItem{Placeholder(out.Totals.GrandTotal)}
		}
	}

	if out.Totals.GrandTotal > 0 {
		out.Status = model.StatusComplete
	} else {
		out.Status = model.StatusIncomplete
	}
	return out
}

// Placeholder builds the single line item standing in for missing detail
func Placeholder(total int64) model.LineItem {
	return model.LineItem{
		Number:      1,
		Code:        PlaceholderCode,
		Description: PlaceholderDescription,
		Quantity:    1,
		UnitPrice:   total,
		Total:       total,
	}
}

// IsPlaceholder returns true if item was synthesized by Reconcile
func IsPlaceholder(item model.LineItem) bool {
	return item.Code == PlaceholderCode && item.Description == PlaceholderDescription
}
