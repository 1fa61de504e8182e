package dto

import "github.com/shopspring/decimal"

// RegisterMovimientoRequest body para POST /api/inventario/movimientos
// (ajustes manuales; compras/ventas/gastos emiten movimientos por sí mismos).
type RegisterMovimientoRequest struct {
	ProductoID string          `json:"producto_id"`
	Signo      int             `json:"signo"` // +1 entrada, -1 salida
	Cantidad   decimal.Decimal `json:"cantidad"`
	Nota       string          `json:"nota,omitempty"`
}

// MovimientoResponse entrada del libro en respuestas.
type MovimientoResponse struct {
	ID           string          `json:"id"`
	ProductoID   string          `json:"producto_id"`
	Signo        int             `json:"signo"`
	Cantidad     decimal.Decimal `json:"cantidad"`
	Origen       string          `json:"origen"`
	ReferenciaID string          `json:"referencia_id,omitempty"`
	Nota         string          `json:"nota,omitempty"`
	Fecha        string          `json:"fecha"`
}

// StockResponse stock actual de un producto (agregado del ledger).
type StockResponse struct {
	ProductoID string          `json:"producto_id"`
	Stock      decimal.Decimal `json:"stock"`
}
