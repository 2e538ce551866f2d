package tabular

import (
	"strings"

	"github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/heuristic"
)

// invoiceField maps a group of column label synonyms to an invoice setter.
// Synonyms are heuristic.Key forms.
type invoiceField struct {
	name     string
	synonyms []string
	set      func(inv *model.Invoice, value string)
}

// invoiceFields is declared in priority order: a label is bound to the first
// field listing it.
var invoiceFields = []invoiceField{
	{"documentType", []string{"tipodte", "tipo", "tipodoc", "tipodocumento", "tipodedocumento"},
		func(inv *model.Invoice, v string) { inv.DocumentType = v }},
	{"folio", []string{"folio", "nfolio", "nrofolio", "numerofolio", "numero", "nro", "nrodocumento", "numerodocumento", "numdoc"},
		func(inv *model.Invoice, v string) { inv.Folio = decimal.Normalize(v) }},
	{"issueDate", []string{"fchemis", "fecha", "fechaemision", "fechadeemision", "fechaemis", "fechadocumento"},
		func(inv *model.Invoice, v string) {
			if t, err := heuristic.ParseDate(v); err == nil {
				inv.IssueDate = t
			}
		}},
	{"issuerRut", []string{"rutemisor", "rutemis", "rutproveedor"},
		func(inv *model.Invoice, v string) { inv.Issuer.RUT = v }},
	{"issuerName", []string{"rznsoc", "razonsocial", "razonsocialemisor", "rznsocemisor", "emisor", "proveedor"},
		func(inv *model.Invoice, v string) { inv.Issuer.Name = v }},
	{"issuerActivity", []string{"giroemis", "giroemisor", "giro"},
		func(inv *model.Invoice, v string) { inv.Issuer.Activity = v }},
	{"issuerAddress", []string{"dirorigen", "direccion", "direccionemisor", "direccionorigen"},
		func(inv *model.Invoice, v string) { inv.Issuer.Address = v }},
	{"issuerComuna", []string{"cmnaorigen", "comuna", "comunaemisor", "comunaorigen"},
		func(inv *model.Invoice, v string) { inv.Issuer.Comuna = v }},
	{"issuerCity", []string{"ciudadorigen", "ciudad", "ciudademisor"},
		func(inv *model.Invoice, v string) { inv.Issuer.City = v }},
	{"receiverRut", []string{"rutrecep", "rutreceptor", "rutcliente"},
		func(inv *model.Invoice, v string) { inv.Receiver.RUT = v }},
	{"receiverName", []string{"rznsocrecep", "razonsocialreceptor", "receptor", "cliente"},
		func(inv *model.Invoice, v string) { inv.Receiver.Name = v }},
	{"receiverActivity", []string{"girorecep", "giroreceptor"},
		func(inv *model.Invoice, v string) { inv.Receiver.Activity = v }},
	{"receiverAddress", []string{"dirrecep", "direccionreceptor"},
		func(inv *model.Invoice, v string) { inv.Receiver.Address = v }},
	{"receiverComuna", []string{"cmnarecep", "comunareceptor"},
		func(inv *model.Invoice, v string) { inv.Receiver.Comuna = v }},
	{"receiverCity", []string{"ciudadrecep", "ciudadreceptor"},
		func(inv *model.Invoice, v string) { inv.Receiver.City = v }},
	{"net", []string{"mntneto", "neto", "montoneto"},
		func(inv *model.Invoice, v string) { inv.Totals.Net = decimal.Normalize(v) }},
	{"exempt", []string{"mntexe", "exento", "montoexento"},
		func(inv *model.Invoice, v string) { inv.Totals.Exempt = decimal.Normalize(v) }},
	{"vat", []string{"iva", "montoiva", "mntiva"},
		func(inv *model.Invoice, v string) { inv.Totals.VAT = decimal.Normalize(v) }},
	{"grandTotal", []string{"mnttotal", "total", "montototal"},
		func(inv *model.Invoice, v string) { inv.Totals.GrandTotal = decimal.Normalize(v) }},
}

var invoiceFieldIndex = buildInvoiceIndex()

func buildInvoiceIndex() map[string]int {
	index := make(map[string]int)
	for i, f := range invoiceFields {
		for _, s := range f.synonyms {
			if _, ok := index[s]; !ok {
				index[s] = i
			}
		}
	}
	return index
}

// lookupInvoiceField returns the field bound to a column label
func lookupInvoiceField(label string) (invoiceField, bool) {
	i, ok := invoiceFieldIndex[heuristic.Key(label)]
	if !ok {
		return invoiceField{}, false
	}
	return invoiceFields[i], true
}

// buildInvoice maps header labels onto values. The first column bound to a
// field wins; unknown columns are ignored.
func buildInvoice(headers, values []string) model.Invoice {
	var inv model.Invoice
	seen := make(map[string]bool)
	for i, label := range headers {
		if i >= len(values) {
			break
		}
		value := strings.TrimSpace(values[i])
		if value == "" {
			continue
		}
		field, ok := lookupInvoiceField(label)
		if !ok || seen[field.name] {
			continue
		}
		field.set(&inv, value)
		seen[field.name] = true
	}
	return inv
}

type detailColumn int

const (
	colNone detailColumn = iota
	colSequence
	colCode
	colDescription
	colQuantity
	colUnitPrice
	colDiscountPercent
	colDiscountAmount
	colLineTotal
)

// positionalColumns is the fixed layout used when no header label matched
var positionalColumns = []detailColumn{
	colSequence, colCode, colDescription, colQuantity,
	colUnitPrice, colDiscountPercent, colDiscountAmount, colLineTotal,
}

var detailSynonyms = []struct {
	column   detailColumn
	synonyms []string
}{
	{colSequence, []string{"item", "it", "nrolindet", "linea", "nrolinea", "n", "no", "nro", "numero", "numerolinea"}},
	{colCode, []string{"codigo", "cod", "vlrcodigo", "cdgitem", "sku", "codigoitem", "codproducto"}},
	{colDescription, []string{"descripcion", "detalle", "nmbitem", "dscitem", "producto", "glosa", "nombre", "nombreitem", "articulo"}},
	{colQuantity, []string{"cantidad", "cant", "qtyitem", "qty", "unidades"}},
	{colUnitPrice, []string{"precio", "preciounitario", "prcitem", "valorunitario", "punitario", "preciounit", "punit", "valorunit"}},
	{colDiscountPercent, []string{"descuentopct", "pctdescuento", "descuentoporcentaje", "porcentajedescuento", "dsctopct"}},
	{colDiscountAmount, []string{"descuento", "dscto", "descuentomonto", "montodescuento", "dsctomonto"}},
	{colLineTotal, []string{"total", "monto", "montoitem", "subtotal", "valor", "totallinea", "montototal", "valortotal"}},
}

var detailIndex = buildDetailIndex()

func buildDetailIndex() map[string]detailColumn {
	index := make(map[string]detailColumn)
	for _, group := range detailSynonyms {
		for _, s := range group.synonyms {
			if _, ok := index[s]; !ok {
				index[s] = group.column
			}
		}
	}
	return index
}

// lookupDetailColumn binds a detail header label to a column. A "%" in the
// label turns a discount column into a percentage.
func lookupDetailColumn(label string) detailColumn {
	key := heuristic.Key(label)
	col := detailIndex[key]
	if strings.Contains(label, "%") && (col == colDiscountAmount || strings.HasPrefix(key, "desc") || strings.HasPrefix(key, "dscto")) {
		return colDiscountPercent
	}
	return col
}

// itemBuilder accumulates cells into a line item and remembers whether any
// cell populated it.
type itemBuilder struct {
	item      model.LineItem
	populated bool
	hasQty    bool
	seen      map[detailColumn]bool
}

func newItemBuilder() *itemBuilder {
	return &itemBuilder{seen: make(map[detailColumn]bool)}
}

func (b *itemBuilder) set(col detailColumn, raw string) {
	value := strings.TrimSpace(raw)
	if col == colNone || value == "" || b.seen[col] {
		return
	}
	b.seen[col] = true
	b.populated = true

	switch col {
	case colSequence:
		b.item.Number = int(decimal.Normalize(value))
	case colCode:
		b.item.Code = value
	case colDescription:
		b.item.Description = value
	case colQuantity:
		b.item.Quantity = decimal.Normalize(value)
		b.hasQty = true
	case colUnitPrice:
		b.item.UnitPrice = decimal.Normalize(value)
	case colDiscountPercent:
		if pct, ok := decimal.ParsePercent(value); ok {
			b.item.DiscountPercent = &pct
		}
	case colDiscountAmount:
		amt := decimal.Normalize(value)
		b.item.DiscountAmount = &amt
	case colLineTotal:
		b.item.Total = decimal.Normalize(value)
	}
}

// buildLineItem maps a detail row by header labels, falling back to the
// fixed positional layout when no label produced a value. The second result
// is false for rows that populate nothing.
func buildLineItem(headers, cells []string) (model.LineItem, bool) {
	b := newItemBuilder()
	for i, label := range headers {
		if i >= len(cells) {
			break
		}
		b.set(lookupDetailColumn(label), cells[i])
	}

	if !b.populated {
		b = newItemBuilder()
		for i, col := range positionalColumns {
			if i >= len(cells) {
				break
			}
			b.set(col, cells[i])
		}
	}

	if !b.populated {
		return model.LineItem{}, false
	}

	if !b.hasQty {
		b.item.Quantity = 1
	}
	b.item.Calculate()
	return b.item, true
}
