package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/report"
)

var (
	outputFile string
	timeout    time.Duration
	companyID  string
	noProgress bool
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Extract invoices from files",
	Long: `Extract invoices from one or more files, directories or glob patterns.

Supported extensions: .xml, .html, .htm, .txt, .tsv, .csv
The format is detected from the content; the extension is only a hint.

Every invoice is reconciled before output: a missing grand total is taken
from the line items, and a document without detail gets a single
placeholder line carrying its total.

Examples:
  invoice-extractor process factura.xml
  invoice-extractor process exports/ -f table
  invoice-extractor process "ventas/*.tsv" -f csv -o ventas.csv
  invoice-extractor process exports/ -f xlsx -o resumen.xlsx
  invoice-extractor process factura.xml --company 42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for the whole batch")
	processCmd.Flags().StringVar(&companyID, "company", "", "Company ID used to build deduplication keys in JSON output")
	processCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to process\n", len(files))

	docs, failed := readDocuments(files)

	opts := []processor.PipelineOption{
		processor.WithLogger(log),
		processor.WithWorkers(cfg.Processing.Workers),
	}
	if len(docs) > 1 && !noProgress && !verbose {
		bar := progressbar.NewOptions(len(docs),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer bar.Finish()
		opts = append(opts, processor.WithProgress(func(*processor.DocumentResult) {
			bar.Add(1)
		}))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	results := mergeResults(processor.NewPipeline(opts...).ProcessBatch(ctx, docs), failed)

	for _, r := range results {
		if r.Err != nil {
			printVerbose("%s: %v\n", r.Document, r.Err)
			continue
		}
		printVerbose("%s: %s, %d invoices, %d warnings\n", r.Document, r.Format, r.InvoiceCount(), r.WarningCount())
	}

	return outputResults(results)
}

func outputResults(results []*processor.DocumentResult) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return report.WriteTable(writer, results)
	case "csv":
		return report.WriteCSV(writer, results)
	case "xlsx":
		return report.WriteXLSX(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w io.Writer, results []*processor.DocumentResult) error {
	out := make([]*ProcessResult, 0, len(results))
	for _, r := range results {
		out = append(out, newProcessResult(r))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// ProcessResult is the JSON shape of one processed file
type ProcessResult struct {
	File      string                `json:"file"`
	Format    string                `json:"format,omitempty"`
	Invoices  []*model.Invoice      `json:"invoices,omitempty"`
	Warnings  []*model.ParseWarning `json:"warnings,omitempty"`
	DedupKeys []model.DedupKey      `json:"dedup_keys,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func newProcessResult(r *processor.DocumentResult) *ProcessResult {
	result := &ProcessResult{File: r.Document}
	if r.Err != nil {
		result.Error = r.Err.Error()
		return result
	}

	result.Format = r.Format.String()
	result.Invoices = r.Invoices()
	result.Warnings = r.Warnings()
	if companyID != "" {
		for _, inv := range result.Invoices {
			result.DedupKeys = append(result.DedupKeys, inv.DedupKey(companyID))
		}
	}
	return result
}
