package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
	"github.com/rezonia/invoice-extractor/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	MaxBodyBytes int64
	Workers      int
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	logger   zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config, logger zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))
	if config.MaxBodyBytes > 0 {
		router.Use(limitBody(config.MaxBodyBytes))
		router.MaxMultipartMemory = config.MaxBodyBytes
	}

	s := &Server{
		config: config,
		router: router,
		pipeline: processor.NewPipeline(
			processor.WithLogger(logger),
			processor.WithWorkers(config.Workers),
		),
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/extract", s.handleExtract)
		v1.POST("/extract/batch", s.handleExtractBatch)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/info", s.handleInfo)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.config.Address).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// readBody returns the raw request body, writing the error response itself
// when the body is missing or too large.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body", Details: err.Error()})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func (s *Server) handleExtract(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	result := s.pipeline.Process(c.Request.Context(), processor.Document{
		Name:    c.Query("filename"),
		Content: body,
	})

	resp := newExtractResponse(result)
	if result.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExtractBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected multipart form", Details: err.Error()})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files uploaded in field \"files\""})
		return
	}

	docs := make([]processor.Document, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read upload " + fh.Filename, Details: err.Error()})
			return
		}
		docs = append(docs, processor.Document{Name: fh.Filename, Content: content})
	}

	batchID := uuid.NewString()
	c.Header("X-Batch-ID", batchID)
	results := s.pipeline.ProcessBatch(c.Request.Context(), docs)

	s.logger.Info().Str("batch_id", batchID).Int("documents", len(docs)).Msg("batch processed")

	if c.Query("format") == "xlsx" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoices-"+batchID+".xlsx"))
		c.Header("Content-Type", xlsxContentType)
		c.Status(http.StatusOK)
		if err := report.WriteXLSX(c.Writer, results); err != nil {
			s.logger.Error().Err(err).Str("batch_id", batchID).Msg("xlsx report failed")
		}
		return
	}

	resp := BatchResponse{BatchID: batchID, Documents: make([]ExtractResponse, 0, len(results))}
	for _, r := range results {
		if r.Err != nil {
			resp.Failed++
		}
		resp.Documents = append(resp.Documents, newExtractResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	result := s.pipeline.Process(c.Request.Context(), processor.Document{
		Name:    c.Query("filename"),
		Content: body,
	})
	if result.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Errors: []string{result.Err.Error()},
		})
		return
	}

	resp := ValidationResponse{Valid: true}
	for _, w := range result.Warnings() {
		resp.Valid = false
		resp.Errors = append(resp.Errors, w.Reason)
	}
	for _, inv := range result.Invoices() {
		iv := InvoiceValidation{Folio: inv.Folio, Valid: true}
		for _, e := range reconcile.Validate(*inv) {
			if e.Rule == reconcile.RuleRequired {
				iv.Valid = false
				iv.Errors = append(iv.Errors, e.Message)
			} else {
				iv.Warnings = append(iv.Warnings, e.Message)
			}
		}
		if !iv.Valid {
			resp.Valid = false
		}
		resp.Invoices = append(resp.Invoices, iv)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	filename := c.Query("filename")
	c.JSON(http.StatusOK, InfoResponse{
		Format:   processor.DetectFormat(body, filename).String(),
		Filename: filename,
		Size:     len(body),
	})
}
