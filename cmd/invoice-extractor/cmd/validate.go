package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

var (
	strictValidation bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice files",
	Long: `Validate the invoices extracted from one or more files.

Checks performed:
  - Required fields present (document type, folio, issue date, grand total)
  - RUT check digit for issuer and receiver
  - Amount consistency (net + exempt + VAT = total, items = total)
  - Records the parser had to reject

Without --strict only missing required fields fail a file.

Examples:
  invoice-extractor validate factura.xml
  invoice-extractor validate exports/ --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat format, consistency and parse warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	docs, failed := readDocuments(files)
	pipeline := processor.NewPipeline(
		processor.WithLogger(log),
		processor.WithWorkers(cfg.Processing.Workers),
	)
	processed := mergeResults(pipeline.ProcessBatch(cmd.Context(), docs), failed)

	results := make([]*ValidationResult, 0, len(processed))
	invalid := 0
	for _, r := range processed {
		result := validateDocument(r, strictValidation)
		if !result.Valid {
			invalid++
		}
		results = append(results, result)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("validation failed for %d of %d files", invalid, len(results))
	}

	return nil
}

func validateDocument(r *processor.DocumentResult, strict bool) *ValidationResult {
	result := &ValidationResult{
		File:     r.Document,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if r.Err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("parse error: %v", r.Err))
		return result
	}

	for _, w := range r.Warnings() {
		if strict {
			result.Valid = false
			result.Errors = append(result.Errors, w.Reason)
		} else {
			result.Warnings = append(result.Warnings, w.Reason)
		}
	}

	for _, inv := range r.Invoices() {
		for _, e := range reconcile.Validate(*inv) {
			msg := fmt.Sprintf("folio %d: %s", inv.Folio, e.Message)
			if isBlocking(e, strict) {
				result.Valid = false
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg)
			}
		}
	}

	return result
}

func isBlocking(e *model.ValidationError, strict bool) bool {
	switch e.Rule {
	case reconcile.RuleRequired:
		return true
	case reconcile.RuleFormat, reconcile.RuleConsistency:
		return strict
	default:
		return false
	}
}

// ValidationResult holds the validation result for one file
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
