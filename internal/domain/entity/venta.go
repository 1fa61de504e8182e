package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta representa la cabecera de una venta a cliente.
type Venta struct {
	ID         string
	ClienteID  string
	Fecha      time.Time
	MedioPago  string
	TotalVenta decimal.Decimal
	Cantidad   decimal.Decimal // suma de cantidades de los detalles
	Estado     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VentaDetalle es una línea de una venta.
type VentaDetalle struct {
	ID             string
	VentaID        string
	ProductoID     string
	Cantidad       int64
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
}
