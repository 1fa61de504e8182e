package document_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/document"
	"github.com/obrasoft/gestion-api/pkg/money"
)

// precios de referencia de prueba (lookup autoritativo simulado)
var testPrices = map[string]string{
	"prod-a": "100.00",
	"prod-b": "50.00",
	"prod-c": "19.99",
}

func testCache(t *testing.T) (*document.PriceCache, *int) {
	t.Helper()
	lookups := 0
	cache := document.NewPriceCache(func(id string) (decimal.Decimal, error) {
		lookups++
		p, ok := testPrices[id]
		if !ok {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.RequireFromString(p), nil
	})
	return cache, &lookups
}

func TestRecomputeRow_SubtotalEsPrecioPorCantidad(t *testing.T) {
	cache, _ := testCache(t)

	precio, subtotal, err := document.RecomputeRow(cache, "prod-a", 3)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(precio))
	assert.True(t, decimal.RequireFromString("300").Equal(subtotal))

	_, subtotal, err = document.RecomputeRow(cache, "prod-c", 2)
	require.NoError(t, err)
	assert.Equal(t, "39,98", money.FormatAmount(subtotal))
}

func TestRecomputeRow_SinProductoAportaCero(t *testing.T) {
	cache, lookups := testCache(t)
	precio, subtotal, err := document.RecomputeRow(cache, "", 5)
	require.NoError(t, err, "fila sin producto no debe fallar")
	assert.True(t, precio.IsZero())
	assert.True(t, subtotal.IsZero())
	assert.Zero(t, *lookups, "no debe consultarse el lookup")
}

func TestRecomputeRow_ProductoInexistente(t *testing.T) {
	cache, _ := testCache(t)
	_, _, err := document.RecomputeRow(cache, "prod-x", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPriceCache_ConsultaUnaSolaVez(t *testing.T) {
	cache, lookups := testCache(t)
	for i := 0; i < 4; i++ {
		_, _, err := document.RecomputeRow(cache, "prod-b", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *lookups, "el precio debe cachearse por sesión")

	cache.Invalidate("prod-b")
	_, _, err := document.RecomputeRow(cache, "prod-b", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, *lookups)
}

func TestRecomputeTotal_ToleraCeldasVaciasYEsInvarianteAlOrden(t *testing.T) {
	cells := []string{"1.234,50", "", "no-numérico", "100,00", "0,50"}
	total := document.RecomputeTotal(cells)
	assert.Equal(t, "1.335,00", money.FormatAmount(total))

	// invariante al orden
	reordered := []string{"0,50", "no-numérico", "100,00", "1.234,50", ""}
	assert.True(t, total.Equal(document.RecomputeTotal(reordered)))

	assert.True(t, document.RecomputeTotal(nil).IsZero())
}

func TestTotals_AgregaMontoYCantidad(t *testing.T) {
	lines := document.Normalize([]document.Line{
		{ProductoID: "prod-a", Cantidad: 2, PrecioUnitario: decimal.RequireFromString("100")},
		{ProductoID: "prod-b", Cantidad: 3, PrecioUnitario: decimal.RequireFromString("50")},
	})
	total, cantidad := document.Totals(lines)
	assert.True(t, decimal.RequireFromString("350").Equal(total))
	assert.True(t, decimal.RequireFromString("5").Equal(cantidad))
}

func TestNormalize_DescartaSubtotalesDelCliente(t *testing.T) {
	lines := []document.Line{{
		ProductoID:     "prod-a",
		Cantidad:       2,
		PrecioUnitario: decimal.RequireFromString("100"),
		Subtotal:       decimal.RequireFromString("999999"), // manipulado
	}}
	out := document.Normalize(lines)
	assert.True(t, decimal.RequireFromString("200").Equal(out[0].Subtotal))
}

func TestValidateLines(t *testing.T) {
	valid := []document.Line{{ProductoID: "prod-a", Cantidad: 1, PrecioUnitario: decimal.RequireFromString("10")}}
	assert.NoError(t, document.ValidateLines(valid))

	cases := map[string][]document.Line{
		"sin líneas":        {},
		"sin producto":      {{Cantidad: 1}},
		"cantidad cero":     {{ProductoID: "prod-a", Cantidad: 0}},
		"cantidad negativa": {{ProductoID: "prod-a", Cantidad: -2}},
		"precio negativo":   {{ProductoID: "prod-a", Cantidad: 1, PrecioUnitario: decimal.RequireFromString("-1")}},
	}
	for name, lines := range cases {
		assert.ErrorIs(t, document.ValidateLines(lines), domain.ErrInvalidInput, name)
	}
}

func TestRecalculator_CambioDeFilaRecalculaFilaYTotal(t *testing.T) {
	cache, _ := testCache(t)
	rc := document.NewRecalculator(cache)

	i := rc.AddRow()
	require.NoError(t, rc.SetProduct(i, "prod-a"))
	require.NoError(t, rc.SetQuantity(i, 2))
	assert.Equal(t, "200,00", money.FormatAmount(rc.Total()))

	j := rc.AddRow()
	require.NoError(t, rc.SetProduct(j, "prod-b"))
	require.NoError(t, rc.SetQuantity(j, 1))
	assert.Equal(t, "250,00", money.FormatAmount(rc.Total()))

	// borrar la primera fila no deja índices obsoletos
	require.NoError(t, rc.RemoveRow(i))
	assert.Equal(t, "50,00", money.FormatAmount(rc.Total()))
	require.NoError(t, rc.SetQuantity(0, 4))
	assert.Equal(t, "200,00", money.FormatAmount(rc.Total()))
}

func TestRecalculator_IndiceFueraDeRango(t *testing.T) {
	cache, _ := testCache(t)
	rc := document.NewRecalculator(cache)
	assert.ErrorIs(t, rc.SetQuantity(3, 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, rc.RemoveRow(0), domain.ErrInvalidInput)
}
