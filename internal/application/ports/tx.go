// Package ports define los puertos transaccionales de la capa de aplicación.
package ports

import (
	"context"

	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Clientes    repository.ClienteRepository
	Proveedores repository.ProveedorRepository
	Productos   repository.ProductoRepository
	Movimientos repository.MovimientoRepository
	Compras     repository.CompraRepository
	Ventas      repository.VentaRepository
	Obras       repository.ObraRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Commit si fn retorna nil; Rollback ante cualquier error.
// Es la única vía para operaciones multi-sentencia (cabecera + detalles +
// movimientos de stock): o se aplica todo, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
