package dto

import "github.com/shopspring/decimal"

// SaveObraRequest body para POST/PUT /api/obras.
type SaveObraRequest struct {
	Nombre           string          `json:"nombre"`
	Direccion        string          `json:"direccion,omitempty"`
	FechaInicio      string          `json:"fecha_inicio,omitempty"` // RFC 3339
	FechaFin         string          `json:"fecha_fin,omitempty"`
	Estado           string          `json:"estado,omitempty"`
	MetrosCuadrados  decimal.Decimal `json:"metros_cuadrados,omitempty"`
	PresupuestoTotal decimal.Decimal `json:"presupuesto_total,omitempty"`
	Descripcion      string          `json:"descripcion,omitempty"`
}

// ObraResponse obra en respuestas.
type ObraResponse struct {
	ID               string          `json:"id"`
	Nombre           string          `json:"nombre"`
	Direccion        string          `json:"direccion,omitempty"`
	FechaInicio      string          `json:"fecha_inicio,omitempty"`
	FechaFin         string          `json:"fecha_fin,omitempty"`
	Estado           string          `json:"estado"`
	MetrosCuadrados  decimal.Decimal `json:"metros_cuadrados"`
	PresupuestoTotal decimal.Decimal `json:"presupuesto_total"`
	Descripcion      string          `json:"descripcion,omitempty"`
}

// SaveTrabajoRequest body para POST/PUT /api/obras/:id/trabajos.
type SaveTrabajoRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	FechaInicio string `json:"fecha_inicio,omitempty"`
	FechaFin    string `json:"fecha_fin,omitempty"`
}

// TrabajoResponse etapa en respuestas.
type TrabajoResponse struct {
	ID          string `json:"id"`
	ObraID      string `json:"obra_id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	FechaInicio string `json:"fecha_inicio,omitempty"`
	FechaFin    string `json:"fecha_fin,omitempty"`
}

// SaveGastoRequest body para POST /api/trabajos/:id/gastos.
// CostoTotal no viaja: se recalcula como cantidad × costo_unitario.
type SaveGastoRequest struct {
	Tipo          string          `json:"tipo"`
	Concepto      string          `json:"concepto"`
	Unidad        string          `json:"unidad,omitempty"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Fecha         string          `json:"fecha,omitempty"`
	ProductoID    string          `json:"producto_id,omitempty"` // descuenta stock si está presente
}

// GastoResponse gasto en respuestas.
type GastoResponse struct {
	ID            string          `json:"id"`
	TrabajoID     string          `json:"trabajo_id"`
	Tipo          string          `json:"tipo"`
	Concepto      string          `json:"concepto"`
	Unidad        string          `json:"unidad,omitempty"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	CostoTotal    decimal.Decimal `json:"costo_total"`
	TotalDisplay  string          `json:"total_display"`
	Fecha         string          `json:"fecha"`
	ProductoID    string          `json:"producto_id,omitempty"`
}

// ObraCostosResponse resumen de costos de una obra.
type ObraCostosResponse struct {
	ObraID       string                 `json:"obra_id"`
	Nombre       string                 `json:"nombre"`
	Presupuesto  decimal.Decimal        `json:"presupuesto"`
	GastoTotal   decimal.Decimal        `json:"gasto_total"`
	TotalDisplay string                 `json:"total_display"`
	PorTrabajo   []TrabajoCostoResponse `json:"por_trabajo"`
}

// TrabajoCostoResponse gasto acumulado de una etapa.
type TrabajoCostoResponse struct {
	TrabajoID string          `json:"trabajo_id"`
	Nombre    string          `json:"nombre"`
	Total     decimal.Decimal `json:"total"`
}
