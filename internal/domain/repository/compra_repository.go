package repository

import "github.com/obrasoft/gestion-api/internal/domain/entity"

// CompraRepository define el puerto de persistencia para Compra y detalles.
type CompraRepository interface {
	Create(compra *entity.Compra) error
	CreateDetalle(detalle *entity.CompraDetalle) error
	Update(compra *entity.Compra) error
	// DeleteDetalles borra TODAS las líneas de una compra (edición por
	// reemplazo completo: borrar e insertar de nuevo, sin diffing parcial).
	DeleteDetalles(compraID string) error
	Delete(id string) error
	// SetEstado marca cierre lógico cuando el borrado físico está bloqueado.
	SetEstado(id, estado string) error
	GetByID(id string) (*entity.Compra, error)
	GetDetalles(compraID string) ([]*entity.CompraDetalle, error)
	List(proveedorID string, limit, offset int) ([]*entity.Compra, error)
}
