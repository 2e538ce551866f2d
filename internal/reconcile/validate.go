package reconcile

import (
	"fmt"
	"strings"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Validation rules
const (
	RuleRequired    = "required"
	RuleRecommended = "recommended"
	RuleFormat      = "format"
	RuleConsistency = "consistency"
)

// Validate reports problems with a reconciled invoice. Only RuleRequired
// issues make an invoice unusable; the others are advisory.
func Validate(inv model.Invoice) []*model.ValidationError {
	var errs []*model.ValidationError

	if inv.DocumentType == "" {
		errs = append(errs, model.NewValidationError("document_type", nil, RuleRequired, "missing document type"))
	}
	if inv.Folio <= 0 {
		errs = append(errs, model.NewValidationError("folio", inv.Folio, RuleRequired, "missing folio"))
	}
	if inv.IssueDate.IsZero() {
		errs = append(errs, model.NewValidationError("issue_date", nil, RuleRequired, "missing issue date"))
	}
	if inv.Totals.GrandTotal <= 0 {
		errs = append(errs, model.NewValidationError("totals.grand_total", inv.Totals.GrandTotal, RuleRequired, "grand total is zero or missing"))
	}

	errs = append(errs, validateRUT("issuer.rut", inv.Issuer.RUT)...)
	errs = append(errs, validateRUT("receiver.rut", inv.Receiver.RUT)...)

	t := inv.Totals
	if t.Net > 0 || t.Exempt > 0 || t.VAT > 0 {
		if sum := t.Net + t.Exempt + t.VAT; sum != t.GrandTotal {
			errs = append(errs, model.NewValidationError("totals", t.GrandTotal, RuleConsistency,
				fmt.Sprintf("net(%d) + exempt(%d) + vat(%d) = %d, but grand total is %d", t.Net, t.Exempt, t.VAT, sum, t.GrandTotal)))
		}
	}

	if len(inv.Items) > 0 && !(len(inv.Items) == 1 && IsPlaceholder(inv.Items[0])) {
		if sum := inv.ItemsTotal(); sum != t.Net+t.Exempt && sum != t.GrandTotal {
			errs = append(errs, model.NewValidationError("line_items", sum, RuleConsistency,
				fmt.Sprintf("line items sum to %d, matching neither net+exempt nor grand total", sum)))
		}
	}

	for i, item := range inv.Items {
		if item.Description == "" {
			errs = append(errs, model.NewValidationError(fmt.Sprintf("line_items[%d].description", i), nil, RuleRecommended, "missing description"))
		}
	}

	return errs
}

func validateRUT(field, rut string) []*model.ValidationError {
	if strings.TrimSpace(rut) == "" {
		return []*model.ValidationError{model.NewValidationError(field, nil, RuleRecommended, "missing RUT")}
	}
	if !ValidRUT(rut) {
		return []*model.ValidationError{model.NewValidationError(field, rut, RuleFormat, "RUT check digit does not match")}
	}
	return nil
}

// HasRequired returns true if any error violates RuleRequired
func HasRequired(errs []*model.ValidationError) bool {
	for _, e := range errs {
		if e.Rule == RuleRequired {
			return true
		}
	}
	return false
}
