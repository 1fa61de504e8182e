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

var _ repository.ObraRepository = (*ObraRepo)(nil)

// ObraRepo implementación del puerto ObraRepository sobre PostgreSQL.
// Cubre las tres tablas del árbol obra > trabajos > gastos.
type ObraRepo struct {
	q Querier
}

// NewObraRepository construye el adaptador. Pasar pool o tx (Querier).
func NewObraRepository(q Querier) *ObraRepo {
	return &ObraRepo{q: q}
}

// Create persiste una obra nueva.
func (r *ObraRepo) Create(obra *entity.Obra) error {
	query := `
		INSERT INTO obras (id, nombre, direccion, fecha_inicio, fecha_fin, estado, metros_cuadrados, presupuesto_total, descripcion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		obra.ID, obra.Nombre, obra.Direccion, obra.FechaInicio, obra.FechaFin, obra.Estado,
		obra.MetrosCuadrados, obra.PresupuestoTotal, obra.Descripcion, obra.CreatedAt, obra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert obra: %w", err)
	}
	return nil
}

// GetByID obtiene una obra. Devuelve nil sin error si no existe.
func (r *ObraRepo) GetByID(id string) (*entity.Obra, error) {
	query := `
		SELECT id, nombre, direccion, fecha_inicio, fecha_fin, estado, metros_cuadrados, presupuesto_total, descripcion, created_at, updated_at
		FROM obras WHERE id = $1`
	var o entity.Obra
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.Nombre, &o.Direccion, &o.FechaInicio, &o.FechaFin, &o.Estado,
		&o.MetrosCuadrados, &o.PresupuestoTotal, &o.Descripcion, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get obra: %w", err)
	}
	return &o, nil
}

// Update actualiza una obra existente.
func (r *ObraRepo) Update(obra *entity.Obra) error {
	query := `
		UPDATE obras SET nombre = $2, direccion = $3, fecha_inicio = $4, fecha_fin = $5, estado = $6,
		       metros_cuadrados = $7, presupuesto_total = $8, descripcion = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		obra.ID, obra.Nombre, obra.Direccion, obra.FechaInicio, obra.FechaFin, obra.Estado,
		obra.MetrosCuadrados, obra.PresupuestoTotal, obra.Descripcion, obra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update obra: %w", err)
	}
	return nil
}

// List lista obras, opcionalmente por estado.
func (r *ObraRepo) List(estado string, limit, offset int) ([]*entity.Obra, error) {
	query := `
		SELECT id, nombre, direccion, fecha_inicio, fecha_fin, estado, metros_cuadrados, presupuesto_total, descripcion, created_at, updated_at
		FROM obras
		WHERE $1 = '' OR estado = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, estado, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}
	defer rows.Close()
	var list []*entity.Obra
	for rows.Next() {
		var o entity.Obra
		if err := rows.Scan(&o.ID, &o.Nombre, &o.Direccion, &o.FechaInicio, &o.FechaFin, &o.Estado,
			&o.MetrosCuadrados, &o.PresupuestoTotal, &o.Descripcion, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan obra: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// Delete elimina una obra. ErrReferenced si sus trabajos la bloquean por FK.
func (r *ObraRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM obras WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete obra: %w", err)
	}
	return nil
}

// SetEstado marca el cierre lógico de la obra.
func (r *ObraRepo) SetEstado(id, estado string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE obras SET estado = $2, updated_at = now() WHERE id = $1`, id, estado)
	if err != nil {
		return fmt.Errorf("set estado obra: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateTrabajo persiste una etapa de obra.
func (r *ObraRepo) CreateTrabajo(trabajo *entity.Trabajo) error {
	query := `
		INSERT INTO trabajos (id, obra_id, nombre, descripcion, fecha_inicio, fecha_fin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		trabajo.ID, trabajo.ObraID, trabajo.Nombre, trabajo.Descripcion,
		trabajo.FechaInicio, trabajo.FechaFin, trabajo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trabajo: %w", err)
	}
	return nil
}

// GetTrabajo obtiene una etapa. Devuelve nil sin error si no existe.
func (r *ObraRepo) GetTrabajo(id string) (*entity.Trabajo, error) {
	query := `
		SELECT id, obra_id, nombre, descripcion, fecha_inicio, fecha_fin, created_at
		FROM trabajos WHERE id = $1`
	var t entity.Trabajo
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.ObraID, &t.Nombre, &t.Descripcion, &t.FechaInicio, &t.FechaFin, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trabajo: %w", err)
	}
	return &t, nil
}

// ListTrabajos lista las etapas de una obra en orden de creación.
func (r *ObraRepo) ListTrabajos(obraID string) ([]*entity.Trabajo, error) {
	query := `
		SELECT id, obra_id, nombre, descripcion, fecha_inicio, fecha_fin, created_at
		FROM trabajos WHERE obra_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, obraID)
	if err != nil {
		return nil, fmt.Errorf("list trabajos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Trabajo
	for rows.Next() {
		var t entity.Trabajo
		if err := rows.Scan(&t.ID, &t.ObraID, &t.Nombre, &t.Descripcion, &t.FechaInicio, &t.FechaFin, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trabajo: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// UpdateTrabajo actualiza una etapa.
func (r *ObraRepo) UpdateTrabajo(trabajo *entity.Trabajo) error {
	query := `
		UPDATE trabajos SET nombre = $2, descripcion = $3, fecha_inicio = $4, fecha_fin = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		trabajo.ID, trabajo.Nombre, trabajo.Descripcion, trabajo.FechaInicio, trabajo.FechaFin,
	)
	if err != nil {
		return fmt.Errorf("update trabajo: %w", err)
	}
	return nil
}

// DeleteTrabajo elimina una etapa. ErrReferenced si sus gastos la bloquean.
func (r *ObraRepo) DeleteTrabajo(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM trabajos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return fmt.Errorf("delete trabajo: %w", err)
	}
	return nil
}

// CreateGasto persiste un gasto imputado a una etapa.
func (r *ObraRepo) CreateGasto(gasto *entity.Gasto) error {
	query := `
		INSERT INTO gastos (id, trabajo_id, tipo, concepto, unidad, cantidad, costo_unitario, costo_total, fecha, producto_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, $11)`
	_, err := r.q.Exec(context.Background(), query,
		gasto.ID, gasto.TrabajoID, gasto.Tipo, gasto.Concepto, gasto.Unidad,
		gasto.Cantidad, gasto.CostoUnitario, gasto.CostoTotal, gasto.Fecha,
		gasto.ProductoID, gasto.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gasto: %w", err)
	}
	return nil
}

// GetGasto obtiene un gasto. Devuelve nil sin error si no existe.
func (r *ObraRepo) GetGasto(id string) (*entity.Gasto, error) {
	query := `
		SELECT id, trabajo_id, tipo, concepto, unidad, cantidad, costo_unitario, costo_total, fecha, COALESCE(producto_id::text, ''), created_at
		FROM gastos WHERE id = $1`
	var g entity.Gasto
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&g.ID, &g.TrabajoID, &g.Tipo, &g.Concepto, &g.Unidad,
		&g.Cantidad, &g.CostoUnitario, &g.CostoTotal, &g.Fecha, &g.ProductoID, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gasto: %w", err)
	}
	return &g, nil
}

// ListGastos lista los gastos de una etapa en orden de creación.
func (r *ObraRepo) ListGastos(trabajoID string) ([]*entity.Gasto, error) {
	query := `
		SELECT id, trabajo_id, tipo, concepto, unidad, cantidad, costo_unitario, costo_total, fecha, COALESCE(producto_id::text, ''), created_at
		FROM gastos WHERE trabajo_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, trabajoID)
	if err != nil {
		return nil, fmt.Errorf("list gastos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Gasto
	for rows.Next() {
		var g entity.Gasto
		if err := rows.Scan(&g.ID, &g.TrabajoID, &g.Tipo, &g.Concepto, &g.Unidad,
			&g.Cantidad, &g.CostoUnitario, &g.CostoTotal, &g.Fecha, &g.ProductoID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gasto: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}

// DeleteGasto elimina un gasto.
func (r *ObraRepo) DeleteGasto(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM gastos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gasto: %w", err)
	}
	return nil
}

// Costos agrega el gasto total de la obra y el desglose por etapa.
func (r *ObraRepo) Costos(obraID string) (*repository.ObraCostos, error) {
	var costos repository.ObraCostos
	err := r.q.QueryRow(context.Background(),
		`SELECT id, nombre, presupuesto_total FROM obras WHERE id = $1`, obraID).Scan(
		&costos.ObraID, &costos.Nombre, &costos.Presupuesto,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get obra para costos: %w", err)
	}

	query := `
		SELECT t.id, t.nombre, COALESCE(SUM(g.costo_total), 0) AS total
		FROM trabajos t
		LEFT JOIN gastos g ON g.trabajo_id = t.id
		WHERE t.obra_id = $1
		GROUP BY t.id, t.nombre, t.created_at
		ORDER BY t.created_at`
	rows, err := r.q.Query(context.Background(), query, obraID)
	if err != nil {
		return nil, fmt.Errorf("costos por trabajo: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tc repository.TrabajoCosto
		if err := rows.Scan(&tc.TrabajoID, &tc.Nombre, &tc.Total); err != nil {
			return nil, fmt.Errorf("scan costo trabajo: %w", err)
		}
		costos.GastoTotal = costos.GastoTotal.Add(tc.Total)
		costos.PorTrabajo = append(costos.PorTrabajo, tc)
	}
	return &costos, rows.Err()
}
