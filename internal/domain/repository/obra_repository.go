package repository

import (
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain/entity"
)

// ObraCostos resumen de costos de una obra (consumo de lectura para
// exportadores y widgets externos).
type ObraCostos struct {
	ObraID      string
	Nombre      string
	Presupuesto decimal.Decimal
	GastoTotal  decimal.Decimal
	PorTrabajo  []TrabajoCosto
}

// TrabajoCosto gasto acumulado de una etapa.
type TrabajoCosto struct {
	TrabajoID string
	Nombre    string
	Total     decimal.Decimal
}

// ObraRepository define el puerto de persistencia para Obra, Trabajo y Gasto.
type ObraRepository interface {
	Create(obra *entity.Obra) error
	GetByID(id string) (*entity.Obra, error)
	Update(obra *entity.Obra) error
	List(estado string, limit, offset int) ([]*entity.Obra, error)
	Delete(id string) error
	SetEstado(id, estado string) error

	CreateTrabajo(trabajo *entity.Trabajo) error
	GetTrabajo(id string) (*entity.Trabajo, error)
	ListTrabajos(obraID string) ([]*entity.Trabajo, error)
	UpdateTrabajo(trabajo *entity.Trabajo) error
	DeleteTrabajo(id string) error

	CreateGasto(gasto *entity.Gasto) error
	GetGasto(id string) (*entity.Gasto, error)
	ListGastos(trabajoID string) ([]*entity.Gasto, error)
	DeleteGasto(id string) error

	Costos(obraID string) (*ObraCostos, error)
}
