package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrasoft/gestion-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Cabecera, detalles y movimientos de stock de un
// documento pasan todos por la misma tx.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos construye el bundle de repositorios sobre un Querier (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Clientes:    NewClienteRepository(q),
		Proveedores: NewProveedorRepository(q),
		Productos:   NewProductoRepository(q),
		Movimientos: NewMovimientoRepository(q),
		Compras:     NewCompraRepository(q),
		Ventas:      NewVentaRepository(q),
		Obras:       NewObraRepository(q),
	}
}
