package repository

import (
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain/entity"
)

// ProductoRepository define el puerto de persistencia para Producto (DIP).
// El stock NO se escribe aquí: se deriva del libro de movimientos.
type ProductoRepository interface {
	Create(producto *entity.Producto) error
	// GetByID adjunta el stock actual (agregado del ledger) en Producto.Stock.
	GetByID(id string) (*entity.Producto, error)
	GetPrecioVenta(id string) (decimal.Decimal, error)
	Update(producto *entity.Producto) error
	List(search string, limit, offset int) ([]*entity.Producto, error)
	Delete(id string) error
	// LockForMovement bloquea la fila del producto (SELECT ... FOR UPDATE)
	// para serializar movimientos concurrentes. Solo válido dentro de una tx.
	LockForMovement(id string) error
}
