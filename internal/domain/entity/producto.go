package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto representa un producto del catálogo.
// Stock NO se almacena aquí: es el agregado del libro de movimientos
// (ver MovimientoStock); se adjunta solo para lectura en listados.
type Producto struct {
	ID            string
	Nombre        string
	PrecioVenta   decimal.Decimal // precio de venta de referencia
	CostoUnitario decimal.Decimal // costo de referencia (opcional, 0 si no aplica)
	Unidad        string          // "un", "kg", "m2", ... (opcional)
	ProveedorID   string          // opcional
	Stock         decimal.Decimal // derivado del ledger, solo lectura
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
