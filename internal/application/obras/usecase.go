// Package obras implementa los proyectos de construcción: obra > trabajos
// (etapas) > gastos. Un gasto de material con producto asociado descuenta
// stock en la misma transacción en que se registra.
package obras

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/application/inventory"
	"github.com/obrasoft/gestion-api/internal/application/ports"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/money"
)

// Tipos de gasto admitidos.
var tiposGasto = map[string]bool{
	"material":   true,
	"mano_obra":  true,
	"transporte": true,
	"otro":       true,
}

// UseCase casos de uso de obras.
type UseCase struct {
	txRunner ports.TxRunner
	obras    repository.ObraRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, obras repository.ObraRepository) *UseCase {
	return &UseCase{txRunner: txRunner, obras: obras}
}

// ──────────────────────────── Obras ────────────────────────────

// Create registra una obra nueva, en estado Activa salvo indicación.
func (uc *UseCase) Create(in dto.SaveObraRequest) (*dto.ObraResponse, error) {
	obra, err := buildObra(in)
	if err != nil {
		return nil, err
	}
	if err := uc.obras.Create(obra); err != nil {
		return nil, err
	}
	return toObraResponse(obra), nil
}

// Update actualiza una obra existente.
func (uc *UseCase) Update(id string, in dto.SaveObraRequest) (*dto.ObraResponse, error) {
	existing, err := uc.obras.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	obra, err := buildObra(in)
	if err != nil {
		return nil, err
	}
	obra.ID = existing.ID
	obra.CreatedAt = existing.CreatedAt
	obra.UpdatedAt = time.Now()
	if err := uc.obras.Update(obra); err != nil {
		return nil, err
	}
	return toObraResponse(obra), nil
}

// GetByID devuelve una obra por id.
func (uc *UseCase) GetByID(id string) (*dto.ObraResponse, error) {
	obra, err := uc.obras.GetByID(id)
	if err != nil {
		return nil, err
	}
	if obra == nil {
		return nil, domain.ErrNotFound
	}
	return toObraResponse(obra), nil
}

// List lista obras, opcionalmente por estado.
func (uc *UseCase) List(estado string, limit, offset int) ([]*dto.ObraResponse, error) {
	obras, err := uc.obras.List(estado, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ObraResponse, 0, len(obras))
	for _, o := range obras {
		out = append(out, toObraResponse(o))
	}
	return out, nil
}

// Delete borra una obra. Si tiene trabajos o gastos asociados el borrado
// queda bloqueado por FK y retorna domain.ErrReferenced; el caller puede
// ofrecer SoftClose como alternativa.
func (uc *UseCase) Delete(id string) error {
	obra, err := uc.obras.GetByID(id)
	if err != nil {
		return err
	}
	if obra == nil {
		return domain.ErrNotFound
	}
	return uc.obras.Delete(id)
}

// SoftClose marca la obra como Cerrada conservando todo su historial.
func (uc *UseCase) SoftClose(id string) error {
	obra, err := uc.obras.GetByID(id)
	if err != nil {
		return err
	}
	if obra == nil {
		return domain.ErrNotFound
	}
	return uc.obras.SetEstado(id, entity.ObraCerrada)
}

// Costos devuelve el resumen de costos de la obra: gasto total y desglose
// por etapa, siempre calculado desde los gastos persistidos.
func (uc *UseCase) Costos(id string) (*dto.ObraCostosResponse, error) {
	costos, err := uc.obras.Costos(id)
	if err != nil {
		return nil, err
	}
	if costos == nil {
		return nil, domain.ErrNotFound
	}
	resp := &dto.ObraCostosResponse{
		ObraID:       costos.ObraID,
		Nombre:       costos.Nombre,
		Presupuesto:  costos.Presupuesto,
		GastoTotal:   costos.GastoTotal,
		TotalDisplay: money.FormatAmount(costos.GastoTotal),
	}
	for _, tc := range costos.PorTrabajo {
		resp.PorTrabajo = append(resp.PorTrabajo, dto.TrabajoCostoResponse{
			TrabajoID: tc.TrabajoID,
			Nombre:    tc.Nombre,
			Total:     tc.Total,
		})
	}
	return resp, nil
}

// ──────────────────────────── Trabajos ────────────────────────────

// CreateTrabajo agrega una etapa a una obra.
func (uc *UseCase) CreateTrabajo(obraID string, in dto.SaveTrabajoRequest) (*dto.TrabajoResponse, error) {
	if in.Nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	obra, err := uc.obras.GetByID(obraID)
	if err != nil {
		return nil, err
	}
	if obra == nil {
		return nil, domain.ErrNotFound
	}

	inicio, err := parseFechaPtr(in.FechaInicio)
	if err != nil {
		return nil, err
	}
	fin, err := parseFechaPtr(in.FechaFin)
	if err != nil {
		return nil, err
	}

	trabajo := &entity.Trabajo{
		ID:          uuid.New().String(),
		ObraID:      obraID,
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		FechaInicio: inicio,
		FechaFin:    fin,
		CreatedAt:   time.Now(),
	}
	if err := uc.obras.CreateTrabajo(trabajo); err != nil {
		return nil, err
	}
	return toTrabajoResponse(trabajo), nil
}

// UpdateTrabajo actualiza una etapa.
func (uc *UseCase) UpdateTrabajo(id string, in dto.SaveTrabajoRequest) (*dto.TrabajoResponse, error) {
	if in.Nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	trabajo, err := uc.obras.GetTrabajo(id)
	if err != nil {
		return nil, err
	}
	if trabajo == nil {
		return nil, domain.ErrNotFound
	}

	inicio, err := parseFechaPtr(in.FechaInicio)
	if err != nil {
		return nil, err
	}
	fin, err := parseFechaPtr(in.FechaFin)
	if err != nil {
		return nil, err
	}

	trabajo.Nombre = in.Nombre
	trabajo.Descripcion = in.Descripcion
	trabajo.FechaInicio = inicio
	trabajo.FechaFin = fin
	if err := uc.obras.UpdateTrabajo(trabajo); err != nil {
		return nil, err
	}
	return toTrabajoResponse(trabajo), nil
}

// ListTrabajos lista las etapas de una obra.
func (uc *UseCase) ListTrabajos(obraID string) ([]*dto.TrabajoResponse, error) {
	trabajos, err := uc.obras.ListTrabajos(obraID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TrabajoResponse, 0, len(trabajos))
	for _, t := range trabajos {
		out = append(out, toTrabajoResponse(t))
	}
	return out, nil
}

// DeleteTrabajo borra una etapa. ErrReferenced si tiene gastos.
func (uc *UseCase) DeleteTrabajo(id string) error {
	trabajo, err := uc.obras.GetTrabajo(id)
	if err != nil {
		return err
	}
	if trabajo == nil {
		return domain.ErrNotFound
	}
	return uc.obras.DeleteTrabajo(id)
}

// ──────────────────────────── Gastos ────────────────────────────

// CreateGasto imputa un gasto a una etapa. CostoTotal se recalcula siempre
// como cantidad × costo_unitario. Si el gasto referencia un producto, la
// salida de stock (origen obra) se emite en la misma transacción que el
// insert del gasto, verificando disponibilidad con la fila bloqueada.
func (uc *UseCase) CreateGasto(ctx context.Context, userID, trabajoID string, in dto.SaveGastoRequest) (*dto.GastoResponse, error) {
	if in.Concepto == "" || !tiposGasto[in.Tipo] {
		return nil, domain.ErrInvalidInput
	}
	if !in.Cantidad.IsPositive() || in.CostoUnitario.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	trabajo, err := uc.obras.GetTrabajo(trabajoID)
	if err != nil {
		return nil, err
	}
	if trabajo == nil {
		return nil, domain.ErrNotFound
	}

	fecha := time.Now()
	if in.Fecha != "" {
		fecha, err = time.Parse(time.RFC3339, in.Fecha)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	gasto := &entity.Gasto{
		ID:            uuid.New().String(),
		TrabajoID:     trabajoID,
		Tipo:          in.Tipo,
		Concepto:      in.Concepto,
		Unidad:        in.Unidad,
		Cantidad:      in.Cantidad,
		CostoUnitario: in.CostoUnitario,
		CostoTotal:    in.Cantidad.Mul(in.CostoUnitario),
		Fecha:         fecha,
		ProductoID:    in.ProductoID,
		CreatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Obras.CreateGasto(gasto); err != nil {
			return err
		}
		if gasto.ProductoID == "" {
			return nil
		}
		if err := inventory.EnsureStock(r, gasto.ProductoID, gasto.Cantidad); err != nil {
			return err
		}
		_, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
			ProductoID:   gasto.ProductoID,
			Signo:        entity.SignoSalida,
			Cantidad:     gasto.Cantidad,
			Origen:       entity.OrigenObra,
			ReferenciaID: gasto.ID,
			UserID:       userID,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toGastoResponse(gasto), nil
}

// ListGastos lista los gastos de una etapa.
func (uc *UseCase) ListGastos(trabajoID string) ([]*dto.GastoResponse, error) {
	gastos, err := uc.obras.ListGastos(trabajoID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.GastoResponse, 0, len(gastos))
	for _, g := range gastos {
		out = append(out, toGastoResponse(g))
	}
	return out, nil
}

// DeleteGasto borra un gasto. Si había descontado stock, emite la entrada
// compensatoria en la misma transacción que el borrado.
func (uc *UseCase) DeleteGasto(ctx context.Context, userID, id string) error {
	gasto, err := uc.obras.GetGasto(id)
	if err != nil {
		return err
	}
	if gasto == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if gasto.ProductoID != "" {
			if _, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
				ProductoID:   gasto.ProductoID,
				Signo:        entity.SignoEntrada,
				Cantidad:     gasto.Cantidad,
				Origen:       entity.OrigenObra,
				ReferenciaID: gasto.ID,
				Nota:         "reverso por borrado de gasto",
				UserID:       userID,
			}, now); err != nil {
				return err
			}
		}
		return r.Obras.DeleteGasto(id)
	})
}

// ──────────────────────────── helpers ────────────────────────────

func buildObra(in dto.SaveObraRequest) (*entity.Obra, error) {
	if in.Nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MetrosCuadrados.IsNegative() || in.PresupuestoTotal.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	estado := in.Estado
	if estado == "" {
		estado = entity.ObraActiva
	}
	switch estado {
	case entity.ObraActiva, entity.ObraFinalizada, entity.ObraCerrada:
	default:
		return nil, domain.ErrInvalidInput
	}

	inicio, err := parseFechaPtr(in.FechaInicio)
	if err != nil {
		return nil, err
	}
	fin, err := parseFechaPtr(in.FechaFin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &entity.Obra{
		ID:               uuid.New().String(),
		Nombre:           in.Nombre,
		Direccion:        in.Direccion,
		FechaInicio:      inicio,
		FechaFin:         fin,
		Estado:           estado,
		MetrosCuadrados:  in.MetrosCuadrados,
		PresupuestoTotal: in.PresupuestoTotal,
		Descripcion:      in.Descripcion,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func parseFechaPtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}

func formatFechaPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toObraResponse(o *entity.Obra) *dto.ObraResponse {
	return &dto.ObraResponse{
		ID:               o.ID,
		Nombre:           o.Nombre,
		Direccion:        o.Direccion,
		FechaInicio:      formatFechaPtr(o.FechaInicio),
		FechaFin:         formatFechaPtr(o.FechaFin),
		Estado:           o.Estado,
		MetrosCuadrados:  o.MetrosCuadrados,
		PresupuestoTotal: o.PresupuestoTotal,
		Descripcion:      o.Descripcion,
	}
}

func toTrabajoResponse(t *entity.Trabajo) *dto.TrabajoResponse {
	return &dto.TrabajoResponse{
		ID:          t.ID,
		ObraID:      t.ObraID,
		Nombre:      t.Nombre,
		Descripcion: t.Descripcion,
		FechaInicio: formatFechaPtr(t.FechaInicio),
		FechaFin:    formatFechaPtr(t.FechaFin),
	}
}

func toGastoResponse(g *entity.Gasto) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:            g.ID,
		TrabajoID:     g.TrabajoID,
		Tipo:          g.Tipo,
		Concepto:      g.Concepto,
		Unidad:        g.Unidad,
		Cantidad:      g.Cantidad,
		CostoUnitario: g.CostoUnitario,
		CostoTotal:    g.CostoTotal,
		TotalDisplay:  money.FormatAmount(g.CostoTotal),
		Fecha:         g.Fecha.Format(time.RFC3339),
		ProductoID:    g.ProductoID,
	}
}
