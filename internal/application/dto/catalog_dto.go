package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────── Clientes ────────────────────────────

// SaveClienteRequest body para POST/PUT /api/clientes.
type SaveClienteRequest struct {
	Nombre   string `json:"nombre"`
	RucCI    string `json:"ruc_ci"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ClienteResponse cliente en respuestas.
type ClienteResponse struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	RucCI    string `json:"ruc_ci"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ──────────────────────────── Proveedores ────────────────────────────

// SaveProveedorRequest body para POST/PUT /api/proveedores.
type SaveProveedorRequest struct {
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Correo    string `json:"correo,omitempty"`
}

// ProveedorResponse proveedor en respuestas.
type ProveedorResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Correo    string `json:"correo,omitempty"`
}

// ──────────────────────────── Productos ────────────────────────────

// SaveProductoRequest body para POST/PUT /api/productos.
type SaveProductoRequest struct {
	Nombre        string          `json:"nombre"`
	PrecioVenta   decimal.Decimal `json:"precio_venta"`
	CostoUnitario decimal.Decimal `json:"costo_unitario,omitempty"`
	Unidad        string          `json:"unidad,omitempty"`
	ProveedorID   string          `json:"proveedor_id,omitempty"`
}

// ProductoResponse producto con stock actual (derivado del ledger) y precio
// formateado para display.
type ProductoResponse struct {
	ID             string          `json:"id"`
	Nombre         string          `json:"nombre"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"`
	PrecioDisplay  string          `json:"precio_display"` // "1.234,50"
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	Unidad         string          `json:"unidad,omitempty"`
	ProveedorID    string          `json:"proveedor_id,omitempty"`
	Stock          decimal.Decimal `json:"stock"`
	FechaCreacion  time.Time       `json:"fecha_creacion"`
}
