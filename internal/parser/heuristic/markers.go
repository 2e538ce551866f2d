package heuristic

import "strings"

// DetailMarker is the line emitted before detail rows in flattened tables
const DetailMarker = "DETALLE"

var (
	documentTypePrefixes = []string{"tipo"}
	numberPrefixes       = []string{"folio", "numero", "nro", "numdoc"}
	detailPrefixes       = []string{"detalle"}
	quantityPrefixes     = []string{"cantidad", "cant", "qty"}
	pricePrefixes        = []string{"precio", "prc", "valorunit", "punit", "preciounit"}
)

// HasDocumentTypeMarker reports whether free text mentions a document type column
func HasDocumentTypeMarker(text string) bool {
	return containsAny(Fold(text), "tipo")
}

// HasNumberMarker reports whether free text mentions a document number column
func HasNumberMarker(text string) bool {
	return containsAny(Fold(text), "folio", "numero", "nro")
}

// IsInvoiceHeaderText reports whether a table row's text carries both the
// document type and document number markers.
func IsInvoiceHeaderText(text string) bool {
	return HasDocumentTypeMarker(text) && HasNumberMarker(text)
}

// IsDetailHeaderText reports whether a row's text looks like line item column
// headers: it names both a quantity and a price.
func IsDetailHeaderText(text string) bool {
	folded := Fold(text)
	return containsAny(folded, "cantidad", "cant.", "qty") &&
		containsAny(folded, "precio", "prc", "valor unit", "p. unit")
}

// IsDetailSectionText reports whether a row opens the line item section
func IsDetailSectionText(text string) bool {
	folded := Fold(text)
	return strings.HasPrefix(folded, "detalle") || IsDetailHeaderText(text)
}

// IsInvoiceHeaderCells reports whether split cells contain a document type
// label and a document number label.
func IsInvoiceHeaderCells(cells []string) bool {
	return anyCellHasPrefix(cells, documentTypePrefixes) && anyCellHasPrefix(cells, numberPrefixes)
}

// IsDetailHeaderCells reports whether split cells contain quantity and price labels
func IsDetailHeaderCells(cells []string) bool {
	return anyCellHasPrefix(cells, quantityPrefixes) && anyCellHasPrefix(cells, pricePrefixes)
}

// IsDetailSectionCells reports whether a line opens the detail section: a
// short line whose first label starts with "detalle", or a detail header row.
func IsDetailSectionCells(cells []string) bool {
	if IsDetailHeaderCells(cells) {
		return true
	}
	filled := NonEmpty(cells)
	if len(filled) == 0 || len(filled) > 2 {
		return false
	}
	return hasAnyPrefix(Key(filled[0]), detailPrefixes)
}

// NonEmpty returns the cells that contain something other than whitespace
func NonEmpty(cells []string) []string {
	var out []string
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// SplitCells splits a tab-delimited line and trims every cell
func SplitCells(line string) []string {
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func anyCellHasPrefix(cells []string, prefixes []string) bool {
	for _, c := range cells {
		if hasAnyPrefix(Key(c), prefixes) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(key string, prefixes []string) bool {
	if key == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
