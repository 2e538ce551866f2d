package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/config"
	"github.com/rezonia/invoice-extractor/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configFile   string
	logLevel     string
	workers      int

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoice-extractor",
	Short: "Extract Chilean tax documents (DTE) from XML, HTML and text exports",
	Long: `Invoice Extractor turns Chilean electronic tax documents into structured invoices.

Supports:
  - XML: EnvioDTE, DTE and EnvioBOLETA files (ISO-8859-1 or UTF-8)
  - HTML: tables exported from accounting systems
  - Text: tab or semicolon separated exports

Examples:
  # Extract a single DTE file
  invoice-extractor process factura.xml

  # Extract a whole folder into an Excel report
  invoice-extractor process exports/ -f xlsx -o resumen.xlsx

  # Check mandatory fields
  invoice-extractor validate *.xml --strict`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table, csv, xlsx)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./invoice-extractor.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: INVOICE_LOG_LEVEL)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Documents processed in parallel (env: INVOICE_PROCESSING_WORKERS)")
}

// initConfig loads the config file and environment, then applies flags on top.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if verbose && logLevel == "" {
		loaded.Log.Level = "debug"
	}
	if workers > 0 {
		loaded.Processing.Workers = workers
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	log = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
