package invoicelib

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// Options configures a Processor
type Options struct {
	Workers int            // documents extracted in parallel by ProcessBatch
	Logger  zerolog.Logger // zero value logs nothing
}

// DefaultOptions returns one worker per CPU and no logging
func DefaultOptions() Options {
	return Options{
		Workers: runtime.NumCPU(),
		Logger:  zerolog.Nop(),
	}
}

// Input is one named document for ProcessBatch
type Input struct {
	Name   string // file name, used as a format hint
	Reader io.Reader
}

// ExtractionResult holds what was extracted from one document
type ExtractionResult struct {
	Name       string
	Format     string
	Invoices   []*Invoice
	Warnings   []*ParseWarning
	Incomplete int
}

// Processor extracts and reconciles invoices
type Processor struct {
	pipeline *processor.Pipeline
}

// NewProcessor creates a new invoice processor with the given options
func NewProcessor(opts Options) *Processor {
	return &Processor{
		pipeline: processor.NewPipeline(
			processor.WithLogger(opts.Logger),
			processor.WithWorkers(opts.Workers),
		),
	}
}

// NewDefaultProcessor creates a processor with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// Process reads one document and extracts its invoices. A rejected document
// returns an error matching one of the Err kinds.
func (p *Processor) Process(ctx context.Context, name string, r io.Reader) (*ExtractionResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	res := p.pipeline.Process(ctx, processor.Document{Name: name, Content: data})
	if res.Err != nil {
		return nil, res.Err
	}
	return toExtractionResult(res), nil
}

// ProcessBatch extracts several documents concurrently. Results keep input
// order; a rejected document leaves a nil entry and its error in errs.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []Input) ([]*ExtractionResult, []error) {
	results := make([]*ExtractionResult, len(inputs))
	errs := make([]error, len(inputs))

	docs := make([]processor.Document, 0, len(inputs))
	positions := make([]int, 0, len(inputs))
	for i, in := range inputs {
		data, err := io.ReadAll(in.Reader)
		if err != nil {
			errs[i] = fmt.Errorf("failed to read %s: %w", in.Name, err)
			continue
		}
		docs = append(docs, processor.Document{Name: in.Name, Content: data})
		positions = append(positions, i)
	}

	for j, res := range p.pipeline.ProcessBatch(ctx, docs) {
		i := positions[j]
		if res.Err != nil {
			errs[i] = res.Err
			continue
		}
		results[i] = toExtractionResult(res)
	}

	return results, errs
}

// Validate reports missing mandatory fields and amount inconsistencies
func Validate(inv *Invoice) []*ValidationError {
	return reconcile.Validate(*inv)
}

// Reconcile repairs totals and adds a placeholder line when there is no detail.
// Invoices returned by Process are already reconciled.
func Reconcile(inv Invoice) Invoice {
	return reconcile.Reconcile(inv)
}

func toExtractionResult(res *processor.DocumentResult) *ExtractionResult {
	return &ExtractionResult{
		Name:       res.Document,
		Format:     res.Format.String(),
		Invoices:   res.Invoices(),
		Warnings:   res.Warnings(),
		Incomplete: res.IncompleteCount(),
	}
}
