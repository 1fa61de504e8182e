package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un documento (compra o venta).
const (
	EstadoActiva  = "Activa"
	EstadoCerrada = "Cerrada" // cierre lógico cuando el borrado está bloqueado por FK
)

// Compra representa la cabecera de una compra a proveedor.
// TotalCompra y CantidadTotal se recalculan siempre desde los detalles al
// guardar; nunca se confía en agregados enviados por el cliente.
type Compra struct {
	ID            string
	ProveedorID   string
	Fecha         time.Time
	MedioPago     string
	Factura       string // número de factura del proveedor (opcional)
	TotalCompra   decimal.Decimal
	CantidadTotal decimal.Decimal
	Estado        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompraDetalle es una línea de una compra. PrecioUnitario es un snapshot al
// momento de la transacción, no una referencia viva al precio del producto.
type CompraDetalle struct {
	ID             string
	CompraID       string
	ProductoID     string
	Cantidad       int64 // entero positivo
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal // cantidad × precio_unitario, redundante para auditoría
}
