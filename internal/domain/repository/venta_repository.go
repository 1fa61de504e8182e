package repository

import "github.com/obrasoft/gestion-api/internal/domain/entity"

// VentaRepository define el puerto de persistencia para Venta y detalles.
type VentaRepository interface {
	Create(venta *entity.Venta) error
	CreateDetalle(detalle *entity.VentaDetalle) error
	Update(venta *entity.Venta) error
	DeleteDetalles(ventaID string) error
	Delete(id string) error
	SetEstado(id, estado string) error
	GetByID(id string) (*entity.Venta, error)
	GetDetalles(ventaID string) ([]*entity.VentaDetalle, error)
	List(clienteID string, limit, offset int) ([]*entity.Venta, error)
}
