package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/invoice-extractor/internal/model"
	htmlparser "github.com/rezonia/invoice-extractor/internal/parser/html"
	"github.com/rezonia/invoice-extractor/internal/parser/tabular"
	xmlparser "github.com/rezonia/invoice-extractor/internal/parser/xml"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// Document is one input file
type Document struct {
	Name    string // used for extension based format hints and logging
	Content []byte
}

// DocumentResult holds everything extracted from one document. Err is set
// when the whole document was rejected; Results is empty in that case.
type DocumentResult struct {
	Document string
	Format   Format
	Results  []model.Result
	Err      error
}

// Invoices returns the reconciled invoices in document order
func (r *DocumentResult) Invoices() []*model.Invoice {
	var out []*model.Invoice
	for _, res := range r.Results {
		if res.Invoice != nil {
			out = append(out, res.Invoice)
		}
	}
	return out
}

// Warnings returns the per-invoice warnings in document order
func (r *DocumentResult) Warnings() []*model.ParseWarning {
	var out []*model.ParseWarning
	for _, res := range r.Results {
		if res.Warning != nil {
			out = append(out, res.Warning)
		}
	}
	return out
}

// InvoiceCount returns the number of invoices extracted
func (r *DocumentResult) InvoiceCount() int {
	return len(r.Invoices())
}

// WarningCount returns the number of rejected invoice records
func (r *DocumentResult) WarningCount() int {
	return len(r.Warnings())
}

// IncompleteCount returns the number of invoices reconciliation flagged
func (r *DocumentResult) IncompleteCount() int {
	n := 0
	for _, inv := range r.Invoices() {
		if inv.IsIncomplete() {
			n++
		}
	}
	return n
}

// Pipeline routes documents to the right parser and reconciles the output
type Pipeline struct {
	logger   zerolog.Logger
	workers  int
	progress func(*DocumentResult)
}

// PipelineOption configures the pipeline
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for per-document diagnostics
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithWorkers bounds how many documents ProcessBatch parses at once
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithProgress registers a callback run after each batch document is done.
// It may be called from several goroutines at once.
func WithProgress(fn func(*DocumentResult)) PipelineOption {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// NewPipeline creates a pipeline. It holds no per-call state and is safe
// for concurrent use.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:  zerolog.Nop(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts and reconciles every invoice in doc. Document level
// failures are reported in DocumentResult.Err.
func (p *Pipeline) Process(ctx context.Context, doc Document) *DocumentResult {
	format := DetectFormat(doc.Content, doc.Name)
	result := &DocumentResult{Document: doc.Name, Format: format}
	log := p.logger.With().Str("document", doc.Name).Stringer("format", format).Logger()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	results, err := parse(format, doc.Content)
	if err != nil {
		log.Warn().Err(err).Msg("document rejected")
		result.Err = fmt.Errorf("%s: %w", doc.Name, err)
		return result
	}

	source := sourceOf(format)
	for i, r := range results {
		if r.Invoice == nil {
			log.Debug().Str("reason", r.Warning.Reason).Msg("invoice skipped")
			continue
		}
		inv := reconcile.Reconcile(*r.Invoice)
		if inv.Source == "" {
			inv.Source = source
		}
		if inv.IsIncomplete() {
			log.Debug().Int64("folio", inv.Folio).Msg("invoice has no usable total")
		}
		results[i] = model.InvoiceResult(inv)
	}
	result.Results = results

	log.Debug().
		Int("invoices", result.InvoiceCount()).
		Int("warnings", result.WarningCount()).
		Msg("document processed")
	return result
}

// ProcessBatch processes docs concurrently and returns one result per
// document in input order. A failing document never affects the others.
// Documents not started before ctx is cancelled carry ctx.Err().
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []Document) []*DocumentResult {
	results := make([]*DocumentResult, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = p.Process(ctx, doc)
			if p.progress != nil {
				p.progress(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func parse(format Format, content []byte) ([]model.Result, error) {
	switch format {
	case FormatXML:
		return xmlparser.Parse(content)
	case FormatHTMLTable:
		lines, err := htmlparser.Flatten(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		return tabular.Parse(lines)
	default:
		return tabular.Parse(tabular.Lines(string(content)))
	}
}

func sourceOf(format Format) model.Source {
	switch format {
	case FormatXML:
		return model.SourceXML
	case FormatHTMLTable:
		return model.SourceHTML
	default:
		return model.SourceText
	}
}

// IsDocumentError returns true if err is one of the document level
// rejections rather than an I/O or cancellation error.
func IsDocumentError(err error) bool {
	return errors.Is(err, model.ErrUnsupportedFormat) ||
		errors.Is(err, model.ErrNoInvoicesFound) ||
		errors.Is(err, model.ErrXMLMalformed)
}
