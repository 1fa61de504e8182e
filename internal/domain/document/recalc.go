// Package document contiene el motor de recálculo de líneas y totales de
// documentos (compras, ventas, gastos de obra): subtotal = precio × cantidad,
// total = suma de subtotales.
package document

import (
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/pkg/money"
)

// Line es una línea de documento en memoria (borrador de formulario).
type Line struct {
	ProductoID     string
	Cantidad       int64
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
}

// PriceCache es la caché de precios de una sesión de formulario, keyed por
// producto. Se pasa explícitamente a las funciones de recálculo; no hay
// estado global compartido entre sesiones.
type PriceCache struct {
	prices map[string]decimal.Decimal
	lookup func(productoID string) (decimal.Decimal, error)
}

// NewPriceCache construye la caché con un lookup al precio de referencia
// autoritativo del producto (normalmente el repositorio de productos).
func NewPriceCache(lookup func(productoID string) (decimal.Decimal, error)) *PriceCache {
	return &PriceCache{
		prices: make(map[string]decimal.Decimal),
		lookup: lookup,
	}
}

// Price devuelve el precio de referencia del producto, consultando el lookup
// la primera vez y cacheando para el resto de la sesión.
func (c *PriceCache) Price(productoID string) (decimal.Decimal, error) {
	if p, ok := c.prices[productoID]; ok {
		return p, nil
	}
	if c.lookup == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	p, err := c.lookup(productoID)
	if err != nil {
		return decimal.Zero, err
	}
	c.prices[productoID] = p
	return p, nil
}

// Invalidate descarta el precio cacheado de un producto (tras editarlo).
func (c *PriceCache) Invalidate(productoID string) {
	delete(c.prices, productoID)
}

// RecomputeRow obtiene el precio autoritativo del producto seleccionado y
// calcula el subtotal de la fila. Una fila sin producto seleccionado aporta
// cero y no es error.
func RecomputeRow(cache *PriceCache, productoID string, cantidad int64) (precio, subtotal decimal.Decimal, err error) {
	if productoID == "" {
		return decimal.Zero, decimal.Zero, nil
	}
	precio, err = cache.Price(productoID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	subtotal = precio.Mul(decimal.NewFromInt(cantidad))
	return precio, subtotal, nil
}

// RecomputeTotal suma los subtotales mostrados en las celdas de una tabla.
// Celdas vacías o ilegibles aportan cero; la suma es pura e invariante al
// orden de las filas. El resultado se renderiza con money.FormatAmount.
func RecomputeTotal(cells []string) decimal.Decimal {
	total := decimal.Zero
	for _, cell := range cells {
		total = total.Add(money.ParseAmountOrZero(cell))
	}
	return total
}

// Totals agrega las líneas de un borrador: total monetario y cantidad total.
// Es la única fuente de los agregados de cabecera al guardar; el servidor
// nunca confía en totales enviados por el cliente.
func Totals(lines []Line) (total, cantidad decimal.Decimal) {
	total, cantidad = decimal.Zero, decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Subtotal)
		cantidad = cantidad.Add(decimal.NewFromInt(ln.Cantidad))
	}
	return total, cantidad
}

// ValidateLines verifica los invariantes de las líneas antes de persistir:
// producto seleccionado, cantidad positiva, precio no negativo y subtotal
// consistente con cantidad × precio.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, ln := range lines {
		if ln.ProductoID == "" || ln.Cantidad <= 0 {
			return domain.ErrInvalidInput
		}
		if ln.PrecioUnitario.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Normalize recalcula el subtotal de cada línea desde cantidad × precio,
// descartando subtotales enviados por el cliente.
func Normalize(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, ln := range lines {
		ln.Subtotal = ln.PrecioUnitario.Mul(decimal.NewFromInt(ln.Cantidad))
		out[i] = ln
	}
	return out
}
