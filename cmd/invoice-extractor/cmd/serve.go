package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for extracting invoices.

The API provides endpoints for:
  - POST /api/v1/extract        - Extract invoices from one document
  - POST /api/v1/extract/batch  - Extract from several uploaded files (json or xlsx)
  - POST /api/v1/validate       - Extract and validate one document
  - POST /api/v1/info           - Detect the format of a document
  - GET  /health                - Health check

Flags override the server section of the config file.

Examples:
  # Start server on the configured address
  invoice-extractor serve

  # Start on a custom port in debug mode
  invoice-extractor serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: INVOICE_SERVER_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Server.Debug || serverDebug,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Workers:      cfg.Processing.Workers,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}
	if readTimeout > 0 {
		config.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		config.WriteTimeout = writeTimeout
	}

	srv := server.NewServer(config, log)
	return srv.Run(cmd.Context())
}
