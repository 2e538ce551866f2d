package tabular

import (
	"fmt"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/heuristic"
)

// state is the parser position between lines. Exactly one of the concrete
// types below is active at a time.
type state interface {
	phase() string
}

// seeking waits for an invoice header line. pending is the invoice built by
// the previous header block, if any; it is finalized when the next header is
// captured or the stream ends.
type seeking struct {
	pending *model.Invoice
}

// headerCaptured holds invoice field labels and waits for their values.
// values is set once a short row arrived and the next line may extend it.
type headerCaptured struct {
	pending *model.Invoice
	headers []string
	values  []string
}

// detailHeaderSeeking holds the invoice being built and waits for the
// detail section. markerSeen is set after a bare "DETALLE" line.
type detailHeaderSeeking struct {
	current    model.Invoice
	markerSeen bool
}

// inDetail accumulates line items under headers.
type inDetail struct {
	current model.Invoice
	headers []string
}

func (seeking) phase() string             { return "seeking" }
func (headerCaptured) phase() string      { return "header_captured" }
func (detailHeaderSeeking) phase() string { return "detail_header_seeking" }
func (inDetail) phase() string            { return "in_detail" }

// step consumes one line. When consumed is false the same line must be fed
// again to the returned state.
func step(s state, line string) (next state, out []model.Result, consumed bool) {
	cells := heuristic.SplitCells(line)
	filled := heuristic.NonEmpty(cells)

	switch st := s.(type) {
	case seeking:
		if heuristic.IsInvoiceHeaderCells(cells) {
			return headerCaptured{pending: st.pending, headers: cells}, nil, true
		}
		return st, nil, true

	case headerCaptured:
		if st.values == nil {
			if len(filled) == 0 {
				return st, nil, true
			}
			if len(cells) < len(st.headers) {
				return headerCaptured{pending: st.pending, headers: st.headers, values: cells}, nil, true
			}
			next, out := st.finish(cells)
			return next, out, true
		}
		// one continuation line at most
		if len(filled) > 0 && !heuristic.IsInvoiceHeaderCells(cells) && !heuristic.IsDetailSectionCells(cells) {
			next, out := st.finish(append(st.values, cells...))
			return next, out, true
		}
		next, out := st.finish(st.values)
		return next, out, false

	case detailHeaderSeeking:
		if heuristic.IsInvoiceHeaderCells(cells) {
			return seeking{pending: &st.current}, nil, false
		}
		if st.markerSeen {
			if len(filled) == 0 {
				return st, nil, true
			}
			return inDetail{current: st.current, headers: cells}, nil, true
		}
		if heuristic.IsDetailHeaderCells(cells) {
			return inDetail{current: st.current, headers: cells}, nil, true
		}
		if heuristic.IsDetailSectionCells(cells) {
			return detailHeaderSeeking{current: st.current, markerSeen: true}, nil, true
		}
		return st, nil, true

	case inDetail:
		if heuristic.IsInvoiceHeaderCells(cells) {
			return seeking{pending: &st.current}, nil, false
		}
		if len(filled) < 2 {
			return seeking{pending: &st.current}, nil, true
		}
		item, ok := buildLineItem(st.headers, cells)
		if !ok {
			return st, nil, true
		}
		if item.Number == 0 {
			item.Number = len(st.current.Items) + 1
		}
		current := st.current
		current.Items = append(current.Items[:len(current.Items):len(current.Items)], item)
		current.ParsedItemsTotal += item.Total
		return inDetail{current: current, headers: st.headers}, nil, true
	}

	return s, nil, true
}

// finish builds the invoice from captured headers and values, first
// finalizing the previous one.
func (st headerCaptured) finish(values []string) (state, []model.Result) {
	out := finalize(st.pending)
	return detailHeaderSeeking{current: buildInvoice(st.headers, values)}, out
}

// flush finalizes whatever the state still holds at end of input.
func flush(s state) []model.Result {
	switch st := s.(type) {
	case seeking:
		return finalize(st.pending)
	case headerCaptured:
		if st.values == nil {
			return finalize(st.pending)
		}
		next, out := st.finish(st.values)
		return append(out, flush(next)...)
	case detailHeaderSeeking:
		return finalize(&st.current)
	case inDetail:
		return finalize(&st.current)
	}
	return nil
}

// finalize emits an invoice that has line items. Header blocks without any
// items become a warning carrying the partial invoice.
func finalize(inv *model.Invoice) []model.Result {
	if inv == nil {
		return nil
	}
	if len(inv.Items) == 0 {
		partial := inv.Clone()
		reason := fmt.Sprintf("invoice with folio %d has no line items", inv.Folio)
		return []model.Result{model.WarningResult(model.ErrNoLineItems, reason, &partial)}
	}
	return []model.Result{model.InvoiceResult(inv.Clone())}
}
