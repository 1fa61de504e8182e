package repository

import "github.com/obrasoft/gestion-api/internal/domain/entity"

// ProveedorRepository define el puerto de persistencia para Proveedor (DIP).
type ProveedorRepository interface {
	Create(proveedor *entity.Proveedor) error
	GetByID(id string) (*entity.Proveedor, error)
	Update(proveedor *entity.Proveedor) error
	List(search string, limit, offset int) ([]*entity.Proveedor, error)
	Delete(id string) error
}
