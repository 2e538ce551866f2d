// Package xml extracts invoices from SII electronic tax documents (DTE).
// A file may hold a single DTE or an envelope with many of them; every
// Documento, Exportaciones or Liquidacion node is one invoice.
package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/heuristic"
)

var invoiceTags = []string{"Documento", "Exportaciones", "Liquidacion"}

// Field fallback chains, tried in order.
var (
	headerTags   = []string{"Encabezado"}
	idDocTags    = []string{"IdDoc"}
	issuerTags   = []string{"Emisor"}
	receiverTags = []string{"Receptor"}
	totalsTags   = []string{"Totales"}
	detailTags   = []string{"Detalle"}

	documentTypeTags = []string{"TipoDTE", "TipoDoc"}
	folioTags        = []string{"Folio"}
	issueDateTags    = []string{"FchEmis", "FechaEmision"}

	issuerRUTTags      = []string{"RUTEmisor", "RutEmisor"}
	issuerNameTags     = []string{"RznSoc", "RznSocEmisor", "RazonSocial"}
	issuerActivityTags = []string{"GiroEmis", "GiroEmisor"}
	issuerAddressTags  = []string{"DirOrigen"}
	issuerComunaTags   = []string{"CmnaOrigen"}
	issuerCityTags     = []string{"CiudadOrigen"}

	receiverRUTTags      = []string{"RUTRecep", "RutReceptor"}
	receiverNameTags     = []string{"RznSocRecep", "RazonSocialReceptor"}
	receiverActivityTags = []string{"GiroRecep"}
	receiverAddressTags  = []string{"DirRecep"}
	receiverComunaTags   = []string{"CmnaRecep"}
	receiverCityTags     = []string{"CiudadRecep"}

	netTags        = []string{"MntNeto"}
	exemptTags     = []string{"MntExe"}
	vatTags        = []string{"IVA"}
	grandTotalTags = []string{"MntTotal"}

	lineNumberTags      = []string{"NroLinDet"}
	codeTags            = []string{"VlrCodigo", "CdgItem", "Codigo"}
	descriptionTags     = []string{"NmbItem", "DscItem", "Descripcion"}
	quantityTags        = []string{"QtyItem", "Cantidad"}
	unitPriceTags       = []string{"PrcItem", "PrecioUnitario", "Precio"}
	lineTotalTags       = []string{"MontoItem", "Monto", "Total"}
	discountPercentTags = []string{"DescuentoPct"}
	discountAmountTags  = []string{"DescuentoMonto"}
)

// Parse reads every invoice node in content. Nodes missing document type,
// folio or issue date become warnings; the others are returned as invoices
// in document order.
func Parse(content []byte) ([]model.Result, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, model.NewParseError(model.ErrXMLMalformed, "xml", "cannot parse document", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(model.ErrXMLMalformed, "xml", "document has no root element", nil)
	}

	nodes := outermost(root, invoiceTags)
	if len(nodes) == 0 {
		return nil, model.NewParseError(model.ErrNoInvoicesFound, root.Tag, "no invoice nodes", nil)
	}

	results := make([]model.Result, 0, len(nodes))
	for i, node := range nodes {
		results = append(results, parseNode(i, node))
	}
	return results, nil
}

func parseNode(index int, node *etree.Element) model.Result {
	header := section(node, headerTags...)
	if header == nil {
		header = node
	}
	idDoc := section(header, idDocTags...)
	if idDoc == nil {
		idDoc = header
	}

	inv := model.Invoice{
		DocumentType: text(idDoc, documentTypeTags...),
		Folio:        decimal.NormalizeXML(text(idDoc, folioTags...)),
		Issuer:       parseIssuer(section(header, issuerTags...)),
		Receiver:     parseReceiver(section(header, receiverTags...)),
		Totals:       parseTotals(section(header, totalsTags...)),
		Source:       model.SourceXML,
	}
	if date, err := heuristic.ParseDate(text(idDoc, issueDateTags...)); err == nil {
		inv.IssueDate = date
	}

	for _, detail := range outermost(node, detailTags) {
		item, ok := parseLineItem(detail)
		if !ok {
			continue
		}
		if item.Number == 0 {
			item.Number = len(inv.Items) + 1
		}
		inv.Items = append(inv.Items, item)
		inv.ParsedItemsTotal += item.Total
	}

	if missing := missingFields(inv); len(missing) > 0 {
		reason := fmt.Sprintf("invoice node %d missing %s", index+1, strings.Join(missing, ", "))
		return model.WarningResult(model.ErrIncomplete, reason, &inv)
	}
	return model.InvoiceResult(inv)
}

func parseIssuer(el *etree.Element) model.Party {
	return model.Party{
		RUT:      text(el, issuerRUTTags...),
		Name:     text(el, issuerNameTags...),
		Activity: text(el, issuerActivityTags...),
		Address:  text(el, issuerAddressTags...),
		Comuna:   text(el, issuerComunaTags...),
		City:     text(el, issuerCityTags...),
	}
}

func parseReceiver(el *etree.Element) model.Party {
	return model.Party{
		RUT:      text(el, receiverRUTTags...),
		Name:     text(el, receiverNameTags...),
		Activity: text(el, receiverActivityTags...),
		Address:  text(el, receiverAddressTags...),
		Comuna:   text(el, receiverComunaTags...),
		City:     text(el, receiverCityTags...),
	}
}

func parseTotals(el *etree.Element) model.Totals {
	return model.Totals{
		Net:        decimal.NormalizeXML(text(el, netTags...)),
		Exempt:     decimal.NormalizeXML(text(el, exemptTags...)),
		VAT:        decimal.NormalizeXML(text(el, vatTags...)),
		GrandTotal: decimal.NormalizeXML(text(el, grandTotalTags...)),
	}
}

// parseLineItem reads one detail node. The second result is false when no
// known field carried a value.
func parseLineItem(detail *etree.Element) (model.LineItem, bool) {
	var (
		item      model.LineItem
		populated bool
	)
	read := func(tags []string) string {
		v := text(detail, tags...)
		if v != "" {
			populated = true
		}
		return v
	}

	item.Number = int(decimal.NormalizeXML(read(lineNumberTags)))
	item.Code = read(codeTags)
	item.Description = read(descriptionTags)

	item.Quantity = 1
	if qty := read(quantityTags); qty != "" {
		item.Quantity = decimal.NormalizeXML(qty)
	}
	item.UnitPrice = decimal.NormalizeXML(read(unitPriceTags))
	item.Total = decimal.NormalizeXML(read(lineTotalTags))

	if pct, ok := decimal.ParsePercent(read(discountPercentTags)); ok {
		item.DiscountPercent = &pct
	}
	if raw := read(discountAmountTags); raw != "" {
		amt := decimal.NormalizeXML(raw)
		item.DiscountAmount = &amt
	}

	if !populated {
		return model.LineItem{}, false
	}
	item.Calculate()
	return item, true
}

func missingFields(inv model.Invoice) []string {
	var missing []string
	if inv.DocumentType == "" {
		missing = append(missing, "document type")
	}
	if inv.Folio <= 0 {
		missing = append(missing, "folio")
	}
	if inv.IssueDate.IsZero() {
		missing = append(missing, "issue date")
	}
	return missing
}
