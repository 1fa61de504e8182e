package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/normalize"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

// ProductoRepo implementación del puerto ProductoRepository sobre PostgreSQL.
// El stock no vive en la tabla productos: cada lectura lo agrega desde
// movimientos_stock con SUM(signo * cantidad).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

const productoStockSubquery = `
	COALESCE((SELECT SUM(m.signo * m.cantidad) FROM movimientos_stock m WHERE m.producto_id = p.id), 0)`

// Create persiste un producto nuevo.
func (r *ProductoRepo) Create(producto *entity.Producto) error {
	query := `
		INSERT INTO productos (id, nombre, nombre_norm, precio_venta, costo_unitario, unidad, proveedor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		producto.ID, producto.Nombre, normalize.SearchKey(producto.Nombre),
		producto.PrecioVenta, producto.CostoUnitario, producto.Unidad, producto.ProveedorID,
		producto.CreatedAt, producto.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto con su stock actual adjunto.
func (r *ProductoRepo) GetByID(id string) (*entity.Producto, error) {
	query := `
		SELECT p.id, p.nombre, p.precio_venta, p.costo_unitario, p.unidad, COALESCE(p.proveedor_id::text, ''),
		       ` + productoStockSubquery + ` AS stock,
		       p.created_at, p.updated_at
		FROM productos p WHERE p.id = $1`
	var p entity.Producto
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Nombre, &p.PrecioVenta, &p.CostoUnitario, &p.Unidad, &p.ProveedorID,
		&p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return &p, nil
}

// GetPrecioVenta devuelve solo el precio de venta vigente (lookup liviano
// para el recálculo de líneas).
func (r *ProductoRepo) GetPrecioVenta(id string) (decimal.Decimal, error) {
	var precio decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT precio_venta FROM productos WHERE id = $1`, id).Scan(&precio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("get precio_venta: %w", err)
	}
	return precio, nil
}

// Update actualiza el catálogo del producto. El stock no se toca aquí.
func (r *ProductoRepo) Update(producto *entity.Producto) error {
	query := `
		UPDATE productos SET nombre = $2, nombre_norm = $3, precio_venta = $4, costo_unitario = $5,
		       unidad = $6, proveedor_id = NULLIF($7, '')::uuid, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		producto.ID, producto.Nombre, normalize.SearchKey(producto.Nombre),
		producto.PrecioVenta, producto.CostoUnitario, producto.Unidad, producto.ProveedorID,
		producto.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update producto: %w", err)
	}
	return nil
}

// List lista productos con búsqueda normalizada, stock adjunto y paginación.
func (r *ProductoRepo) List(search string, limit, offset int) ([]*entity.Producto, error) {
	query := `
		SELECT p.id, p.nombre, p.precio_venta, p.costo_unitario, p.unidad, COALESCE(p.proveedor_id::text, ''),
		       ` + productoStockSubquery + ` AS stock,
		       p.created_at, p.updated_at
		FROM productos p
		WHERE $1 = '' OR p.nombre_norm LIKE '%' || $1 || '%'
		ORDER BY p.nombre LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(&p.ID, &p.Nombre, &p.PrecioVenta, &p.CostoUnitario, &p.Unidad,
			&p.ProveedorID, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina un producto. ErrReferenced si detalles o movimientos lo
// referencian: el historial manda.
func (r *ProductoRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete producto: %w", err)
	}
	return nil
}

// LockForMovement bloquea la fila del producto (SELECT ... FOR UPDATE) para
// serializar movimientos concurrentes. Solo tiene sentido dentro de una tx.
func (r *ProductoRepo) LockForMovement(id string) error {
	var found string
	err := r.q.QueryRow(context.Background(),
		`SELECT id FROM productos WHERE id = $1 FOR UPDATE`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock producto: %w", err)
	}
	return nil
}
