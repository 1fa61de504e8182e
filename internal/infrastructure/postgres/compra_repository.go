package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

var _ repository.CompraRepository = (*CompraRepo)(nil)

// CompraRepo implementación del puerto CompraRepository sobre PostgreSQL.
type CompraRepo struct {
	q Querier
}

// NewCompraRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompraRepository(q Querier) *CompraRepo {
	return &CompraRepo{q: q}
}

// Create persiste la cabecera de una compra.
func (r *CompraRepo) Create(compra *entity.Compra) error {
	query := `
		INSERT INTO compras (id, proveedor_id, fecha, medio_pago, factura, total_compra, cantidad_total, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		compra.ID, compra.ProveedorID, compra.Fecha, compra.MedioPago, compra.Factura,
		compra.TotalCompra, compra.CantidadTotal, compra.Estado, compra.CreatedAt, compra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert compra: %w", err)
	}
	return nil
}

// CreateDetalle persiste una línea de compra.
func (r *CompraRepo) CreateDetalle(detalle *entity.CompraDetalle) error {
	query := `
		INSERT INTO compra_detalles (id, compra_id, producto_id, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detalle.ID, detalle.CompraID, detalle.ProductoID, detalle.Cantidad,
		detalle.PrecioUnitario, detalle.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert compra_detalle: %w", err)
	}
	return nil
}

// Update actualiza la cabecera con sus agregados recalculados.
func (r *CompraRepo) Update(compra *entity.Compra) error {
	query := `
		UPDATE compras SET proveedor_id = $2, fecha = $3, medio_pago = $4, factura = $5,
		       total_compra = $6, cantidad_total = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		compra.ID, compra.ProveedorID, compra.Fecha, compra.MedioPago, compra.Factura,
		compra.TotalCompra, compra.CantidadTotal, compra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update compra: %w", err)
	}
	return nil
}

// DeleteDetalles borra todas las líneas de una compra (edición por reemplazo
// completo).
func (r *CompraRepo) DeleteDetalles(compraID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM compra_detalles WHERE compra_id = $1`, compraID)
	if err != nil {
		return fmt.Errorf("delete compra_detalles: %w", err)
	}
	return nil
}

// Delete elimina la cabecera. ErrReferenced si otra tabla la bloquea por FK.
func (r *CompraRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM compras WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete compra: %w", err)
	}
	return nil
}

// SetEstado marca el cierre lógico de la compra.
func (r *CompraRepo) SetEstado(id, estado string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE compras SET estado = $2, updated_at = now() WHERE id = $1`, id, estado)
	if err != nil {
		return fmt.Errorf("set estado compra: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la cabecera. Devuelve nil sin error si no existe.
func (r *CompraRepo) GetByID(id string) (*entity.Compra, error) {
	query := `
		SELECT id, proveedor_id, fecha, medio_pago, factura, total_compra, cantidad_total, estado, created_at, updated_at
		FROM compras WHERE id = $1`
	var c entity.Compra
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.ProveedorID, &c.Fecha, &c.MedioPago, &c.Factura,
		&c.TotalCompra, &c.CantidadTotal, &c.Estado, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get compra: %w", err)
	}
	return &c, nil
}

// GetDetalles devuelve las líneas de una compra en un orden estable por id.
func (r *CompraRepo) GetDetalles(compraID string) ([]*entity.CompraDetalle, error) {
	query := `
		SELECT id, compra_id, producto_id, cantidad, precio_unitario, subtotal
		FROM compra_detalles WHERE compra_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, compraID)
	if err != nil {
		return nil, fmt.Errorf("get compra_detalles: %w", err)
	}
	defer rows.Close()
	var list []*entity.CompraDetalle
	for rows.Next() {
		var d entity.CompraDetalle
		if err := rows.Scan(&d.ID, &d.CompraID, &d.ProductoID, &d.Cantidad, &d.PrecioUnitario, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan compra_detalle: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List lista compras, opcionalmente de un proveedor, más recientes primero.
func (r *CompraRepo) List(proveedorID string, limit, offset int) ([]*entity.Compra, error) {
	query := `
		SELECT id, proveedor_id, fecha, medio_pago, factura, total_compra, cantidad_total, estado, created_at, updated_at
		FROM compras
		WHERE $1 = '' OR proveedor_id::text = $1
		ORDER BY fecha DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, proveedorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list compras: %w", err)
	}
	defer rows.Close()
	var list []*entity.Compra
	for rows.Next() {
		var c entity.Compra
		if err := rows.Scan(&c.ID, &c.ProveedorID, &c.Fecha, &c.MedioPago, &c.Factura,
			&c.TotalCompra, &c.CantidadTotal, &c.Estado, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan compra: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
