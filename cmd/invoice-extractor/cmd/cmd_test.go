package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.xml"), "<DTE/>")
	writeFile(t, filepath.Join(dir, "sub", "b.TSV"), "x")
	writeFile(t, filepath.Join(dir, "sub", "c.pdf"), "x")
	writeFile(t, filepath.Join(dir, "d.html"), "<html/>")

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.xml"),
		filepath.Join(dir, "d.html"),
		filepath.Join(dir, "sub", "b.TSV"),
	}, files)

	files, err = collectFiles([]string{filepath.Join(dir, "*.xml")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xml")}, files)

	files, err = collectFiles([]string{filepath.Join(dir, "s*")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "b.TSV")}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing.xml")})
	assert.Error(t, err)
}

func TestCollectFiles_ExplicitFileKeepsAnyExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.dat")
	writeFile(t, path, "x")

	files, err := collectFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	writeFile(t, ok, "hola")

	docs, failed := readDocuments([]string{ok, filepath.Join(dir, "gone.txt")})
	require.Len(t, docs, 1)
	assert.Equal(t, ok, docs[0].Name)
	assert.Equal(t, []byte("hola"), docs[0].Content)

	require.Len(t, failed, 1)
	require.Contains(t, failed, 1)
	assert.ErrorContains(t, failed[1].Err, "failed to read file")
}

func TestMergeResults_KeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	last := filepath.Join(dir, "c.txt")
	writeFile(t, first, "nada")
	writeFile(t, last, "nada")
	files := []string{first, filepath.Join(dir, "b.txt"), last}

	docs, failed := readDocuments(files)
	results := mergeResults(processor.NewPipeline().ProcessBatch(context.Background(), docs), failed)

	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, files[i], r.Document)
	}
	assert.ErrorContains(t, results[1].Err, "failed to read file")
}

func TestIsBlocking(t *testing.T) {
	tests := []struct {
		rule   string
		strict bool
		want   bool
	}{
		{reconcile.RuleRequired, false, true},
		{reconcile.RuleFormat, false, false},
		{reconcile.RuleFormat, true, true},
		{reconcile.RuleConsistency, true, true},
		{reconcile.RuleRecommended, true, false},
	}

	for _, tt := range tests {
		e := model.NewValidationError("f", nil, tt.rule, "msg")
		assert.Equal(t, tt.want, isBlocking(e, tt.strict), "%s strict=%v", tt.rule, tt.strict)
	}
}

func TestValidateDocument(t *testing.T) {
	inv := model.Invoice{
		DocumentType: "33",
		Folio:        10,
		Issuer:       model.Party{RUT: "76123456-1"},
		Receiver:     model.Party{RUT: "96555444-0"},
		Totals:       model.Totals{GrandTotal: 1190},
		Items:        []model.LineItem{{Number: 1, Description: "Caja", Quantity: 1, UnitPrice: 1190, Total: 1190}},
	}
	res := &processor.DocumentResult{
		Document: "a.xml",
		Results: []model.Result{
			model.InvoiceResult(inv),
			model.WarningResult(model.ErrIncomplete, "invoice node 2 missing folio", nil),
		},
	}

	lenient := validateDocument(res, false)
	assert.False(t, lenient.Valid)
	assert.Contains(t, lenient.Errors, "folio 10: missing issue date")
	assert.Contains(t, lenient.Warnings, "invoice node 2 missing folio")

	strict := validateDocument(res, true)
	assert.False(t, strict.Valid)
	assert.Contains(t, strict.Errors, "invoice node 2 missing folio")
	assert.Greater(t, len(strict.Errors), len(lenient.Errors))
}

func TestValidateDocument_Rejected(t *testing.T) {
	res := &processor.DocumentResult{Document: "x.txt", Err: errors.New("no invoices found")}

	result := validateDocument(res, false)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"parse error: no invoices found"}, result.Errors)
}

func TestNewProcessResult(t *testing.T) {
	companyID = "acme"
	t.Cleanup(func() { companyID = "" })

	res := &processor.DocumentResult{
		Document: "a.xml",
		Format:   processor.FormatXML,
		Results:  []model.Result{model.InvoiceResult(model.Invoice{Folio: 5, Issuer: model.Party{RUT: "1-9"}})},
	}

	out := newProcessResult(res)
	assert.Equal(t, "xml", out.Format)
	require.Len(t, out.Invoices, 1)
	require.Len(t, out.DedupKeys, 1)
	assert.Equal(t, model.DedupKey{CompanyID: "acme", Folio: 5, IssuerRUT: "1-9"}, out.DedupKeys[0])
}

func TestGetPreview(t *testing.T) {
	assert.Equal(t, "TipoDTE | Folio", getPreview("\n  \nTipoDTE\tFolio\n33\t1\n", 50))
	assert.Equal(t, "abc...", getPreview("abcdef", 3))
	assert.Empty(t, getPreview("\n\n", 10))
}
