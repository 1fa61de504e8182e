package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo implementación del libro de movimientos sobre PostgreSQL.
// La tabla es append-only: este repo no expone UPDATE ni DELETE.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Append agrega una entrada al libro.
func (r *MovimientoRepo) Append(mov *entity.MovimientoStock) error {
	query := `
		INSERT INTO movimientos_stock (id, producto_id, signo, cantidad, origen, referencia_id, nota, fecha, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7, $8, NULLIF($9, '')::uuid)`
	_, err := r.q.Exec(context.Background(), query,
		mov.ID, mov.ProductoID, mov.Signo, mov.Cantidad, mov.Origen,
		mov.ReferenciaID, mov.Nota, mov.Fecha, mov.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// CurrentStock calcula SUM(signo * cantidad) para el producto. Cero si el
// producto no tiene movimientos.
func (r *MovimientoRepo) CurrentStock(productoID string) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(signo * cantidad), 0) FROM movimientos_stock WHERE producto_id = $1`,
		productoID).Scan(&stock)
	if err != nil {
		return decimal.Zero, fmt.Errorf("current stock: %w", err)
	}
	return stock, nil
}

// List devuelve el historial con filtros, del más reciente al más antiguo.
func (r *MovimientoRepo) List(filter repository.MovimientoFilter) ([]*entity.MovimientoStock, error) {
	query := `
		SELECT id, producto_id, signo, cantidad, origen, COALESCE(referencia_id::text, ''), nota, fecha, COALESCE(created_by::text, '')
		FROM movimientos_stock
		WHERE ($1 = '' OR producto_id::text = $1)
		  AND ($2 = '' OR origen = $2)
		  AND ($3::timestamptz IS NULL OR fecha >= $3)
		  AND ($4::timestamptz IS NULL OR fecha <= $4)
		ORDER BY fecha DESC, id DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(context.Background(), query,
		filter.ProductoID, filter.Origen, filter.Desde, filter.Hasta, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovimientoStock
	for rows.Next() {
		var m entity.MovimientoStock
		if err := rows.Scan(&m.ID, &m.ProductoID, &m.Signo, &m.Cantidad, &m.Origen,
			&m.ReferenciaID, &m.Nota, &m.Fecha, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
