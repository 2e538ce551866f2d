package html_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/heuristic"
	htmlparser "github.com/rezonia/invoice-extractor/internal/parser/html"
)

func TestFlatten_SkipsNonInvoiceTables(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "export.html"))
	require.NoError(t, err)
	defer f.Close()

	lines, err := htmlparser.Flatten(f)
	require.NoError(t, err)

	expected := []string{
		"Tipo DTE\tFolio\tFecha Emisión\tRUT Emisor\tRazón Social\tNeto\tIVA\tTotal",
		"33\t101\t10-01-2024\t76.123.456-0\tComercial Los Andes SpA\t1.000\t190\t1.190",
		heuristic.DetailMarker,
		"Item\tDescripción\tCantidad\tPrecio\tTotal",
		"1\tTornillos\t2\t250\t500",
		"2\tTuercas\t5\t100\t",
		"",
		"",
	}
	assert.Equal(t, expected, lines)

	for _, line := range lines {
		assert.NotContains(t, line, "Periodo")
	}
}

func TestFlatten_HeaderRowOpensDetail(t *testing.T) {
	doc := `<table>
<tr><td>Tipo</td><td>Número</td><td>Fecha</td></tr>
<tr><td>33</td><td>7</td><td>2024-02-01</td></tr>
<tr><td>Item</td><td>Detalle</td><td>Cant.</td><td>Precio Unitario</td></tr>
<tr><td>1</td><td>Servicio</td><td>1</td><td>9.990</td></tr>
</table>`

	lines, err := htmlparser.Flatten(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Tipo\tNúmero\tFecha",
		"33\t7\t2024-02-01",
		heuristic.DetailMarker,
		"Item\tDetalle\tCant.\tPrecio Unitario",
		"1\tServicio\t1\t9.990",
		"",
	}, lines)
}

func TestFlatten_NestedTablesBelongToTheirOwnTable(t *testing.T) {
	doc := `<table>
<tr><td>Encabezado</td></tr>
<tr><td><table><tr><td>Tipo</td><td>Folio</td></tr><tr><td>33</td><td>9</td></tr></table></td></tr>
</table>`

	lines, err := htmlparser.Flatten(strings.NewReader(doc))
	require.NoError(t, err)

	// the outer table has no marker of its own once the nested text is left out
	assert.Equal(t, []string{"Tipo\tFolio", "33\t9", ""}, lines)
}

func TestFlatten_OuterInvoiceTableKeepsOwnCells(t *testing.T) {
	doc := `<table>
<tr><td>Tipo</td><td>Folio</td></tr>
<tr><td>33</td><td>12<table><tr><td>Nota</td><td>interna</td></tr></table></td></tr>
</table>`

	lines, err := htmlparser.Flatten(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Tipo\tFolio", "33\t12", ""}, lines)
}

func TestFlatten_NoTables(t *testing.T) {
	_, err := htmlparser.Flatten(strings.NewReader("<html><body><p>Sin datos</p></body></html>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestFlatten_OnlyUnrelatedTables(t *testing.T) {
	lines, err := htmlparser.Flatten(strings.NewReader(`<table><tr><td>Producto</td><td>Stock</td></tr></table>`))
	require.NoError(t, err)
	assert.Empty(t, lines)
}
