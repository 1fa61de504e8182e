package document

import (
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain"
)

// Recalculator es el mediador de recálculo de un formulario: mantiene el
// borrador de filas y, ante un cambio de cantidad o producto en la fila i,
// recalcula esa fila y luego el total. Los índices se resuelven en cada
// operación, así el recálculo sobrevive a borrar o reordenar filas.
type Recalculator struct {
	cache *PriceCache
	rows  []Line
	total decimal.Decimal
}

// NewRecalculator construye el mediador sobre una caché de precios de sesión.
func NewRecalculator(cache *PriceCache) *Recalculator {
	return &Recalculator{cache: cache}
}

// Rows devuelve una copia del borrador actual.
func (r *Recalculator) Rows() []Line {
	out := make([]Line, len(r.rows))
	copy(out, r.rows)
	return out
}

// Total devuelve el total vigente.
func (r *Recalculator) Total() decimal.Decimal { return r.total }

// Load reemplaza el borrador completo (al abrir un documento para edición)
// y recalcula todas las filas.
func (r *Recalculator) Load(rows []Line) error {
	r.rows = make([]Line, len(rows))
	copy(r.rows, rows)
	for i := range r.rows {
		if err := r.recomputeAt(i); err != nil {
			return err
		}
	}
	r.recomputeTotal()
	return nil
}

// AddRow agrega una fila vacía y devuelve su índice.
func (r *Recalculator) AddRow() int {
	r.rows = append(r.rows, Line{})
	return len(r.rows) - 1
}

// RemoveRow elimina la fila i; los índices de las filas posteriores se
// desplazan, por eso el mediador recalcula el total sobre el slice vigente.
func (r *Recalculator) RemoveRow(i int) error {
	if i < 0 || i >= len(r.rows) {
		return domain.ErrInvalidInput
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	r.recomputeTotal()
	return nil
}

// SetProduct cambia el producto de la fila i y recalcula fila y total.
func (r *Recalculator) SetProduct(i int, productoID string) error {
	if i < 0 || i >= len(r.rows) {
		return domain.ErrInvalidInput
	}
	r.rows[i].ProductoID = productoID
	if err := r.recomputeAt(i); err != nil {
		return err
	}
	r.recomputeTotal()
	return nil
}

// SetQuantity cambia la cantidad de la fila i y recalcula fila y total.
func (r *Recalculator) SetQuantity(i int, cantidad int64) error {
	if i < 0 || i >= len(r.rows) {
		return domain.ErrInvalidInput
	}
	r.rows[i].Cantidad = cantidad
	if err := r.recomputeAt(i); err != nil {
		return err
	}
	r.recomputeTotal()
	return nil
}

func (r *Recalculator) recomputeAt(i int) error {
	ln := &r.rows[i]
	precio, subtotal, err := RecomputeRow(r.cache, ln.ProductoID, ln.Cantidad)
	if err != nil {
		return err
	}
	ln.PrecioUnitario = precio
	ln.Subtotal = subtotal
	return nil
}

func (r *Recalculator) recomputeTotal() {
	total, _ := Totals(r.rows)
	r.total = total
}
