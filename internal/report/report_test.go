package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/report"
)

const export = "TipoDTE\tFolio\tFchEmis\tRUT Emisor\n" +
	"33\t101\t2024-01-10\t76.123.456-0\n" +
	"DETALLE\n" +
	"Item\tDescripcion\tCantidad\tPrecio\tDescuento %\n" +
	"1\tProducto\t2\t500\t10\n" +
	"2\tFlete\t1\t300\t\n" +
	"\n" +
	"TipoDTE\tFolio\tFchEmis\n" +
	"33\t102\t2024-01-11\n"

func sampleResults(t *testing.T) []*processor.DocumentResult {
	t.Helper()
	p := processor.NewPipeline()
	return p.ProcessBatch(context.Background(), []processor.Document{
		{Name: "ventas.txt", Content: []byte(export)},
		{Name: "roto.xml", Content: []byte("<DTE><Documento><Folio>1</Folio")},
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, sampleResults(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "document", rows[0][0])
	assert.Equal(t, "error", rows[0][len(rows[0])-1])

	assert.Equal(t, []string{"ventas.txt", "text", "33", "101", "2024-01-10", "76.123.456-0"}, rows[1][:6])
	assert.Equal(t, "1200", rows[1][12])
	assert.Equal(t, "complete", rows[1][13])
	assert.Equal(t, "2", rows[1][14])

	assert.Equal(t, "roto.xml", rows[2][0])
	assert.Contains(t, rows[2][len(rows[2])-1], "malformed XML")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, sampleResults(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "DOCUMENT"))
	assert.Contains(t, out, "ventas.txt")
	assert.Contains(t, out, "76.123.456-0")
	assert.Contains(t, out, "WARNING: invoice with folio 102 has no line items")
	assert.Contains(t, out, "ERROR:")
}

func TestProblems(t *testing.T) {
	problems := report.Problems(sampleResults(t))
	require.Len(t, problems, 2)

	assert.Equal(t, "warning", problems[0].Severity)
	assert.Equal(t, int64(102), problems[0].Folio)
	assert.Equal(t, "error", problems[1].Severity)
	assert.Equal(t, "roto.xml", problems[1].Document)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, sampleResults(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetInvoices, report.SheetLineItems, report.SheetProblems}, f.GetSheetList())

	invoices, err := f.GetRows(report.SheetInvoices)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "folio", invoices[0][3])
	assert.Equal(t, "101", invoices[1][3])
	assert.Equal(t, "1200", invoices[1][12])

	items, err := f.GetRows(report.SheetLineItems)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Producto", items[1][5])
	assert.Equal(t, "10", items[1][8])
	assert.Equal(t, "900", items[1][10])
	assert.Equal(t, "300", items[2][10])

	problems, err := f.GetRows(report.SheetProblems)
	require.NoError(t, err)
	require.Len(t, problems, 3)
	assert.Equal(t, "warning", problems[1][1])
	assert.Equal(t, "error", problems[2][1])
}
