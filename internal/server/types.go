package server

import (
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
)

// ExtractResponse is the result of extracting one document
type ExtractResponse struct {
	Document        string                `json:"document,omitempty"`
	Format          string                `json:"format"`
	Invoices        []*model.Invoice      `json:"invoices"`
	Warnings        []*model.ParseWarning `json:"warnings,omitempty"`
	InvoiceCount    int                   `json:"invoice_count"`
	WarningCount    int                   `json:"warning_count"`
	IncompleteCount int                   `json:"incomplete_count"`
	Error           string                `json:"error,omitempty"`
}

func newExtractResponse(r *processor.DocumentResult) ExtractResponse {
	resp := ExtractResponse{
		Document: r.Document,
		Format:   r.Format.String(),
		Invoices: r.Invoices(),
		Warnings: r.Warnings(),
	}
	if resp.Invoices == nil {
		resp.Invoices = []*model.Invoice{}
	}
	resp.InvoiceCount = len(resp.Invoices)
	resp.WarningCount = len(resp.Warnings)
	resp.IncompleteCount = r.IncompleteCount()
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// BatchResponse is the response for the batch endpoint
type BatchResponse struct {
	BatchID   string            `json:"batch_id"`
	Documents []ExtractResponse `json:"documents"`
	Failed    int               `json:"failed"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid    bool                `json:"valid"`
	Invoices []InvoiceValidation `json:"invoices,omitempty"`
	Errors   []string            `json:"errors,omitempty"`
}

// InvoiceValidation lists problems found in one invoice
type InvoiceValidation struct {
	Folio    int64    `json:"folio"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Format   string `json:"format"`
	Filename string `json:"filename,omitempty"`
	Size     int    `json:"size"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
