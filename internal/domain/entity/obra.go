package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una obra.
const (
	ObraActiva     = "Activa"
	ObraFinalizada = "Finalizada"
	ObraCerrada    = "Cerrada"
)

// Obra es un proyecto de construcción, organizado en etapas (Trabajo) que
// acumulan gastos (Gasto).
type Obra struct {
	ID               string
	Nombre           string
	Direccion        string
	FechaInicio      *time.Time
	FechaFin         *time.Time
	Estado           string
	MetrosCuadrados  decimal.Decimal
	PresupuestoTotal decimal.Decimal
	Descripcion      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Trabajo es una etapa de una obra.
type Trabajo struct {
	ID          string
	ObraID      string
	Nombre      string
	Descripcion string
	FechaInicio *time.Time
	FechaFin    *time.Time
	CreatedAt   time.Time
}

// Gasto es un gasto imputado a una etapa. CostoTotal se recalcula siempre como
// cantidad × costo_unitario al guardar. Si ProductoID está presente y la
// cantidad es positiva, el guardado emite una salida de stock (origen "obra")
// en la misma transacción.
type Gasto struct {
	ID            string
	TrabajoID     string
	Tipo          string // material, mano_obra, transporte, otro
	Concepto      string
	Unidad        string
	Cantidad      decimal.Decimal
	CostoUnitario decimal.Decimal
	CostoTotal    decimal.Decimal
	Fecha         time.Time
	ProductoID    string // opcional: descuenta stock si está presente
	CreatedAt     time.Time
}
