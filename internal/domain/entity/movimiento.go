package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes válidos de un movimiento de stock.
const (
	OrigenCompra = "compra"
	OrigenVenta  = "venta"
	OrigenObra   = "obra"
	OrigenAjuste = "ajuste"
)

// Signos de un movimiento: +1 entrada, -1 salida.
const (
	SignoEntrada = 1
	SignoSalida  = -1
)

// MovimientoStock es una entrada del libro de movimientos de stock.
// El libro es append-only: las correcciones se hacen con entradas
// compensatorias, nunca reescribiendo historial. El stock actual de un
// producto es SUM(signo * cantidad) sobre sus entradas.
type MovimientoStock struct {
	ID           string
	ProductoID   string
	Signo        int             // +1 entrada, -1 salida
	Cantidad     decimal.Decimal // siempre positiva; el signo va aparte
	Origen       string          // compra, venta, obra, ajuste
	ReferenciaID string          // documento que lo causó (opcional)
	Nota         string
	Fecha        time.Time
	CreatedBy    string // UserID
}

// Delta devuelve el efecto con signo sobre el stock.
func (m MovimientoStock) Delta() decimal.Decimal {
	if m.Signo < 0 {
		return m.Cantidad.Neg()
	}
	return m.Cantidad
}
