package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice files",
	Long: `Display the detected format and a short summary of each file.

Shows:
  - Detected format (XML, HTML table, delimited text)
  - Number of invoices and rejected records
  - File metadata

Examples:
  invoice-extractor info factura.xml
  invoice-extractor info exports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	pipeline := processor.NewPipeline(processor.WithLogger(log))
	for _, file := range files {
		printFileInfo(cmd, pipeline, file)
		fmt.Println()
	}

	return nil
}

func printFileInfo(cmd *cobra.Command, pipeline *processor.Pipeline, filePath string) {
	fmt.Printf("File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	format := processor.DetectFormat(data, filePath)
	fmt.Printf("  Format: %s\n", formatName(format))

	result := pipeline.Process(cmd.Context(), processor.Document{Name: filePath, Content: data})
	if result.Err != nil {
		fmt.Printf("  Error: %v\n", result.Err)
	} else {
		fmt.Printf("  Invoices: %d (%d incomplete)\n", result.InvoiceCount(), result.IncompleteCount())
		fmt.Printf("  Rejected: %d\n", result.WarningCount())
	}

	if format == processor.FormatDelimitedText {
		if preview := getPreview(string(data), 120); preview != "" {
			fmt.Printf("  Preview: %s\n", preview)
		}
	}
}

func formatName(f processor.Format) string {
	switch f {
	case processor.FormatXML:
		return "XML (DTE)"
	case processor.FormatHTMLTable:
		return "HTML table"
	default:
		return "Delimited text"
	}
}

// getPreview returns the first non-empty line, shortened to maxLen
func getPreview(content string, maxLen int) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\t", " | "))
		if line == "" {
			continue
		}
		if len(line) > maxLen {
			return line[:maxLen] + "..."
		}
		return line
	}
	return ""
}
