package tabular_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/tabular"
)

func loadLines(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return tabular.Lines(string(data))
}

func TestParse_SingleInvoice(t *testing.T) {
	lines := []string{
		"TipoDTE\tFolio\tFchEmis",
		"33\t101\t2024-01-10",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tProducto\t2\t500",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].IsInvoice())

	inv := results[0].Invoice
	assert.Equal(t, "33", inv.DocumentType)
	assert.Equal(t, int64(101), inv.Folio)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), inv.IssueDate)

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assert.Equal(t, 1, item.Number)
	assert.Equal(t, "Producto", item.Description)
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, int64(500), item.UnitPrice)
	assert.Equal(t, int64(1000), item.Total)
	assert.Equal(t, int64(1000), inv.ParsedItemsTotal)
}

func TestParse_ExportFile(t *testing.T) {
	results, err := tabular.Parse(loadLines(t, "ventas.tsv"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0].Invoice
	require.NotNil(t, first)
	assert.Equal(t, "33", first.DocumentType)
	assert.Equal(t, int64(101), first.Folio)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), first.IssueDate)
	assert.Equal(t, "76.123.456-0", first.Issuer.RUT)
	assert.Equal(t, "Comercial Los Andes SpA", first.Issuer.Name)
	assert.Equal(t, "96.555.444-0", first.Receiver.RUT)
	assert.Equal(t, model.Totals{Net: 1000, VAT: 190, GrandTotal: 1190}, first.Totals)

	require.Len(t, first.Items, 2)
	assert.Equal(t, "TOR-01", first.Items[0].Code)
	assert.Equal(t, int64(500), first.Items[0].Total)
	require.NotNil(t, first.Items[1].DiscountPercent)
	assert.Equal(t, "10", first.Items[1].DiscountPercent.String())
	assert.Equal(t, int64(450), first.Items[1].Total)
	assert.Equal(t, int64(950), first.ParsedItemsTotal)

	second := results[1].Invoice
	require.NotNil(t, second)
	assert.Equal(t, int64(102), second.Folio)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Asesoría", second.Items[0].Description)
	assert.Equal(t, int64(15000), second.Items[0].Total)
}

func TestParse_NoHeader(t *testing.T) {
	_, err := tabular.Parse([]string{"hola\tmundo", "1\t2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoInvoicesFound)

	_, err = tabular.Parse(nil)
	assert.ErrorIs(t, err, model.ErrNoInvoicesFound)
}

func TestParse_HeaderWithoutItems(t *testing.T) {
	lines := []string{
		"Tipo\tFolio\tTotal",
		"33\t7\t11.900",
		"Tipo\tFolio\tTotal",
		"33\t8\t500",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tCafé\t1\t500",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.NotNil(t, results[0].Warning)
	assert.ErrorIs(t, results[0].Warning.Kind, model.ErrNoLineItems)
	require.NotNil(t, results[0].Warning.Partial)
	assert.Equal(t, int64(7), results[0].Warning.Partial.Folio)
	assert.Equal(t, int64(11900), results[0].Warning.Partial.Totals.GrandTotal)

	require.NotNil(t, results[1].Invoice)
	assert.Equal(t, int64(8), results[1].Invoice.Folio)
}

func TestParse_WrappedValues(t *testing.T) {
	lines := []string{
		"Tipo\tFolio\tFecha\tRazon Social\tTotal",
		"33\t55\t2024-03-05",
		"Ferretería Sur\t2.000",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tMartillo\t1\t2.000",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)

	inv := results[0].Invoice
	require.NotNil(t, inv)
	assert.Equal(t, "Ferretería Sur", inv.Issuer.Name)
	assert.Equal(t, int64(2000), inv.Totals.GrandTotal)
	assert.Len(t, inv.Items, 1)
}

func TestParse_WrappedValuesStopAtDetail(t *testing.T) {
	lines := []string{
		"Tipo\tFolio\tFecha\tTotal",
		"33\t56",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tMartillo\t1\t2.000",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)

	inv := results[0].Invoice
	require.NotNil(t, inv)
	assert.Equal(t, int64(56), inv.Folio)
	assert.True(t, inv.IssueDate.IsZero())
	assert.Len(t, inv.Items, 1)
}

func TestParse_PositionalFallback(t *testing.T) {
	lines := []string{
		"Tipo\tFolio",
		"33\t9",
		"DETALLE",
		"Col A\tCol B\tCol C\tCol D\tCol E",
		"1\tX-1\tClavos\t3\t100",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)

	inv := results[0].Invoice
	require.NotNil(t, inv)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "X-1", inv.Items[0].Code)
	assert.Equal(t, "Clavos", inv.Items[0].Description)
	assert.Equal(t, int64(300), inv.Items[0].Total)
}

func TestParse_QuantityDefaultsToOne(t *testing.T) {
	lines := []string{
		"Tipo\tFolio",
		"33\t10",
		"Descripcion\tPrecio Unitario\tCant.",
		"Flete\t4.500\t",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)

	inv := results[0].Invoice
	require.NotNil(t, inv)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, int64(1), inv.Items[0].Quantity)
	assert.Equal(t, int64(4500), inv.Items[0].Total)
}

func TestParse_HeaderLineEndsDetail(t *testing.T) {
	lines := []string{
		"Tipo\tFolio",
		"33\t1",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tUno\t1\t100",
		"Tipo\tFolio",
		"33\t2",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio",
		"1\tDos\t1\t200",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Invoice.Folio)
	assert.Equal(t, int64(2), results[1].Invoice.Folio)
	assert.Len(t, results[0].Invoice.Items, 1)
}

func TestParse_ExplicitTotalKeepsPrecedence(t *testing.T) {
	lines := []string{
		"Tipo\tFolio",
		"33\t3",
		"DETALLE",
		"Item\tDescripcion\tCantidad\tPrecio\tTotal",
		"1\tRedondeo\t3\t333\t1.000",
	}

	results, err := tabular.Parse(lines)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1000), results[0].Invoice.Items[0].Total)
}

func TestLines(t *testing.T) {
	t.Run("tab delimited with CRLF", func(t *testing.T) {
		assert.Equal(t, []string{"a\tb", "1\t2", ""}, tabular.Lines("a\tb\r\n1\t2\r\n"))
	})

	t.Run("semicolon delimited", func(t *testing.T) {
		assert.Equal(t, []string{"Tipo\tFolio", "33\t1,5"}, tabular.Lines("Tipo;Folio\n33;1,5"))
	})

	t.Run("byte order mark", func(t *testing.T) {
		assert.Equal(t, []string{"x\ty"}, tabular.Lines("\ufeffx\ty"))
	})

	t.Run("comma delimited with quoted amounts", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Tipo\tFolio\tTotal", "33\t7\t1.190,50", ""},
			tabular.Lines("Tipo,Folio,Total\n33,7,\"1.190,50\"\n"))
	})
}

func TestParse_CommaDelimitedExport(t *testing.T) {
	content := "TipoDTE,Folio,FchEmis\n" +
		"33,55,2024-05-02\n" +
		"DETALLE\n" +
		"Item,Descripcion,Cantidad,Precio\n" +
		"1,\"Cable, 2 m\",3,\"1.500\"\n"

	results, err := tabular.Parse(tabular.Lines(content))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].IsInvoice())

	inv := results[0].Invoice
	assert.Equal(t, int64(55), inv.Folio)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Cable, 2 m", inv.Items[0].Description)
	assert.Equal(t, int64(4500), inv.Items[0].Total)
}
