package dto

import "github.com/shopspring/decimal"

// DetalleRequest línea de un documento (compra o venta) enviada por el
// cliente. El subtotal NO viaja: se recalcula siempre en el servidor.
type DetalleRequest struct {
	ProductoID     string          `json:"producto_id"`
	Cantidad       int64           `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"` // 0 = usar precio de referencia del producto
}

// SaveCompraRequest body para POST/PUT /api/compras.
type SaveCompraRequest struct {
	ProveedorID string           `json:"proveedor_id"`
	Fecha       string           `json:"fecha,omitempty"` // RFC 3339; vacío = ahora
	MedioPago   string           `json:"medio_pago"`
	Factura     string           `json:"factura,omitempty"`
	Detalles    []DetalleRequest `json:"detalles"`
}

// SaveVentaRequest body para POST/PUT /api/ventas.
type SaveVentaRequest struct {
	ClienteID string           `json:"cliente_id"`
	Fecha     string           `json:"fecha,omitempty"`
	MedioPago string           `json:"medio_pago"`
	Detalles  []DetalleRequest `json:"detalles"`
}

// DetalleResponse línea de detalle en respuestas.
type DetalleResponse struct {
	ID              string          `json:"id"`
	ProductoID      string          `json:"producto_id"`
	Cantidad        int64           `json:"cantidad"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"` // "1.234,50"
}

// CompraResponse compra con detalle.
type CompraResponse struct {
	ID            string            `json:"id"`
	ProveedorID   string            `json:"proveedor_id"`
	Fecha         string            `json:"fecha"`
	MedioPago     string            `json:"medio_pago"`
	Factura       string            `json:"factura,omitempty"`
	TotalCompra   decimal.Decimal   `json:"total_compra"`
	TotalDisplay  string            `json:"total_display"`
	CantidadTotal decimal.Decimal   `json:"cantidad_total"`
	Estado        string            `json:"estado"`
	Detalles      []DetalleResponse `json:"detalles,omitempty"`
}

// VentaResponse venta con detalle.
type VentaResponse struct {
	ID           string            `json:"id"`
	ClienteID    string            `json:"cliente_id"`
	Fecha        string            `json:"fecha"`
	MedioPago    string            `json:"medio_pago"`
	TotalVenta   decimal.Decimal   `json:"total_venta"`
	TotalDisplay string            `json:"total_display"`
	Cantidad     decimal.Decimal   `json:"cantidad"`
	Estado       string            `json:"estado"`
	Detalles     []DetalleResponse `json:"detalles,omitempty"`
}
