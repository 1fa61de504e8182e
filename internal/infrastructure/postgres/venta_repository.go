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

var _ repository.VentaRepository = (*VentaRepo)(nil)

// VentaRepo implementación del puerto VentaRepository sobre PostgreSQL.
type VentaRepo struct {
	q Querier
}

// NewVentaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVentaRepository(q Querier) *VentaRepo {
	return &VentaRepo{q: q}
}

// Create persiste la cabecera de una venta.
func (r *VentaRepo) Create(venta *entity.Venta) error {
	query := `
		INSERT INTO ventas (id, cliente_id, fecha, medio_pago, total_venta, cantidad, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		venta.ID, venta.ClienteID, venta.Fecha, venta.MedioPago,
		venta.TotalVenta, venta.Cantidad, venta.Estado, venta.CreatedAt, venta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert venta: %w", err)
	}
	return nil
}

// CreateDetalle persiste una línea de venta.
func (r *VentaRepo) CreateDetalle(detalle *entity.VentaDetalle) error {
	query := `
		INSERT INTO venta_detalles (id, venta_id, producto_id, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detalle.ID, detalle.VentaID, detalle.ProductoID, detalle.Cantidad,
		detalle.PrecioUnitario, detalle.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert venta_detalle: %w", err)
	}
	return nil
}

// Update actualiza la cabecera con sus agregados recalculados.
func (r *VentaRepo) Update(venta *entity.Venta) error {
	query := `
		UPDATE ventas SET cliente_id = $2, fecha = $3, medio_pago = $4,
		       total_venta = $5, cantidad = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		venta.ID, venta.ClienteID, venta.Fecha, venta.MedioPago,
		venta.TotalVenta, venta.Cantidad, venta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update venta: %w", err)
	}
	return nil
}

// DeleteDetalles borra todas las líneas de una venta.
func (r *VentaRepo) DeleteDetalles(ventaID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM venta_detalles WHERE venta_id = $1`, ventaID)
	if err != nil {
		return fmt.Errorf("delete venta_detalles: %w", err)
	}
	return nil
}

// Delete elimina la cabecera. ErrReferenced si otra tabla la bloquea por FK.
func (r *VentaRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM ventas WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete venta: %w", err)
	}
	return nil
}

// SetEstado marca el cierre lógico de la venta.
func (r *VentaRepo) SetEstado(id, estado string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE ventas SET estado = $2, updated_at = now() WHERE id = $1`, id, estado)
	if err != nil {
		return fmt.Errorf("set estado venta: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la cabecera. Devuelve nil sin error si no existe.
func (r *VentaRepo) GetByID(id string) (*entity.Venta, error) {
	query := `
		SELECT id, cliente_id, fecha, medio_pago, total_venta, cantidad, estado, created_at, updated_at
		FROM ventas WHERE id = $1`
	var v entity.Venta
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.ClienteID, &v.Fecha, &v.MedioPago,
		&v.TotalVenta, &v.Cantidad, &v.Estado, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	return &v, nil
}

// GetDetalles devuelve las líneas de una venta en un orden estable por id.
func (r *VentaRepo) GetDetalles(ventaID string) ([]*entity.VentaDetalle, error) {
	query := `
		SELECT id, venta_id, producto_id, cantidad, precio_unitario, subtotal
		FROM venta_detalles WHERE venta_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("get venta_detalles: %w", err)
	}
	defer rows.Close()
	var list []*entity.VentaDetalle
	for rows.Next() {
		var d entity.VentaDetalle
		if err := rows.Scan(&d.ID, &d.VentaID, &d.ProductoID, &d.Cantidad, &d.PrecioUnitario, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan venta_detalle: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List lista ventas, opcionalmente de un cliente, más recientes primero.
func (r *VentaRepo) List(clienteID string, limit, offset int) ([]*entity.Venta, error) {
	query := `
		SELECT id, cliente_id, fecha, medio_pago, total_venta, cantidad, estado, created_at, updated_at
		FROM ventas
		WHERE $1 = '' OR cliente_id::text = $1
		ORDER BY fecha DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, clienteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ventas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Venta
	for rows.Next() {
		var v entity.Venta
		if err := rows.Scan(&v.ID, &v.ClienteID, &v.Fecha, &v.MedioPago,
			&v.TotalVenta, &v.Cantidad, &v.Estado, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
