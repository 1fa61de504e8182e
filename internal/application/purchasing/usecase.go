// Package purchasing implementa las compras a proveedor: documentos de
// cabecera + detalle cuyo guardado alimenta el libro de movimientos de stock.
package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/application/inventory"
	"github.com/obrasoft/gestion-api/internal/application/ports"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/document"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/money"
)

// UseCase casos de uso de compras.
type UseCase struct {
	txRunner    ports.TxRunner
	compras     repository.CompraRepository
	proveedores repository.ProveedorRepository
	productos   repository.ProductoRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	compras repository.CompraRepository,
	proveedores repository.ProveedorRepository,
	productos repository.ProductoRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		compras:     compras,
		proveedores: proveedores,
		productos:   productos,
	}
}

// Create guarda una compra nueva: cabecera + N detalles + una entrada de
// stock (+1) por línea, todo en una sola transacción. Los agregados de la
// cabecera se recalculan siempre desde las líneas.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.SaveCompraRequest) (*dto.CompraResponse, error) {
	lines, fecha, err := uc.prepare(in)
	if err != nil {
		return nil, err
	}

	total, cantidad := document.Totals(lines)
	now := time.Now()
	compra := &entity.Compra{
		ID:            uuid.New().String(),
		ProveedorID:   in.ProveedorID,
		Fecha:         fecha,
		MedioPago:     in.MedioPago,
		Factura:       in.Factura,
		TotalCompra:   total,
		CantidadTotal: cantidad,
		Estado:        entity.EstadoActiva,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Compras.Create(compra); err != nil {
			return err
		}
		if err := insertDetalles(r, compra.ID, lines, userID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(compra.ID)
}

// Update edita una compra existente por reemplazo completo del detalle:
// (a) entradas compensatorias por las líneas anteriores, (b) DELETE de todos
// los detalles previos, (c) INSERT del borrador actual, (d) UPDATE de la
// cabecera con agregados recalculados — una sola transacción; una aplicación
// parcial es un bug de consistencia, no un modo degradado.
func (uc *UseCase) Update(ctx context.Context, userID, compraID string, in dto.SaveCompraRequest) (*dto.CompraResponse, error) {
	existing, err := uc.compras.GetByID(compraID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	lines, fecha, err := uc.prepare(in)
	if err != nil {
		return nil, err
	}

	total, cantidad := document.Totals(lines)
	now := time.Now()

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := reverseDetalles(r, compraID, userID, now); err != nil {
			return err
		}
		if err := r.Compras.DeleteDetalles(compraID); err != nil {
			return err
		}
		if err := insertDetalles(r, compraID, lines, userID, now); err != nil {
			return err
		}
		existing.ProveedorID = in.ProveedorID
		existing.Fecha = fecha
		existing.MedioPago = in.MedioPago
		existing.Factura = in.Factura
		existing.TotalCompra = total
		existing.CantidadTotal = cantidad
		existing.UpdatedAt = now
		return r.Compras.Update(existing)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(compraID)
}

// Delete borra una compra: entradas compensatorias + borrado de detalles +
// borrado de cabecera, en una transacción. Si el borrado está bloqueado por
// una FK externa retorna domain.ErrReferenced para que el caller ofrezca el
// cierre lógico (SoftClose).
func (uc *UseCase) Delete(ctx context.Context, userID, compraID string) error {
	existing, err := uc.compras.GetByID(compraID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := reverseDetalles(r, compraID, userID, now); err != nil {
			return err
		}
		if err := r.Compras.DeleteDetalles(compraID); err != nil {
			return err
		}
		return r.Compras.Delete(compraID)
	})
}

// SoftClose marca la compra como Cerrada (alternativa cuando Delete retorna
// ErrReferenced).
func (uc *UseCase) SoftClose(compraID string) error {
	existing, err := uc.compras.GetByID(compraID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return uc.compras.SetEstado(compraID, entity.EstadoCerrada)
}

// GetByID devuelve la compra con sus detalles, exactamente como quedaron
// persistidos (reabre el documento para edición).
func (uc *UseCase) GetByID(compraID string) (*dto.CompraResponse, error) {
	compra, err := uc.compras.GetByID(compraID)
	if err != nil {
		return nil, err
	}
	if compra == nil {
		return nil, domain.ErrNotFound
	}
	detalles, err := uc.compras.GetDetalles(compraID)
	if err != nil {
		return nil, err
	}
	return toResponse(compra, detalles), nil
}

// List devuelve compras (opcionalmente de un proveedor).
func (uc *UseCase) List(proveedorID string, limit, offset int) ([]*dto.CompraResponse, error) {
	compras, err := uc.compras.List(proveedorID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CompraResponse, 0, len(compras))
	for _, c := range compras {
		out = append(out, toResponse(c, nil))
	}
	return out, nil
}

// prepare valida el request y construye las líneas normalizadas. El precio
// unitario en cero usa el costo de referencia del producto; el subtotal del
// cliente se descarta siempre.
func (uc *UseCase) prepare(in dto.SaveCompraRequest) ([]document.Line, time.Time, error) {
	if in.ProveedorID == "" || in.MedioPago == "" || len(in.Detalles) == 0 {
		return nil, time.Time{}, domain.ErrInvalidInput
	}

	proveedor, err := uc.proveedores.GetByID(in.ProveedorID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if proveedor == nil {
		return nil, time.Time{}, domain.ErrNotFound
	}

	fecha := time.Now()
	if in.Fecha != "" {
		fecha, err = time.Parse(time.RFC3339, in.Fecha)
		if err != nil {
			return nil, time.Time{}, domain.ErrInvalidInput
		}
	}

	lines := make([]document.Line, 0, len(in.Detalles))
	for _, det := range in.Detalles {
		precio := det.PrecioUnitario
		if precio.IsZero() {
			producto, err := uc.productos.GetByID(det.ProductoID)
			if err != nil {
				return nil, time.Time{}, err
			}
			if producto == nil {
				return nil, time.Time{}, domain.ErrNotFound
			}
			precio = producto.CostoUnitario
		}
		lines = append(lines, document.Line{
			ProductoID:     det.ProductoID,
			Cantidad:       det.Cantidad,
			PrecioUnitario: precio,
		})
	}
	lines = document.Normalize(lines)
	if err := document.ValidateLines(lines); err != nil {
		return nil, time.Time{}, err
	}
	return lines, fecha, nil
}

// insertDetalles inserta las líneas y una entrada de stock (+1) por línea,
// con los repositorios de la transacción en curso.
func insertDetalles(r ports.Repos, compraID string, lines []document.Line, userID string, now time.Time) error {
	for _, ln := range lines {
		det := &entity.CompraDetalle{
			ID:             uuid.New().String(),
			CompraID:       compraID,
			ProductoID:     ln.ProductoID,
			Cantidad:       ln.Cantidad,
			PrecioUnitario: ln.PrecioUnitario,
			Subtotal:       ln.Subtotal,
		}
		if err := r.Compras.CreateDetalle(det); err != nil {
			return err
		}
		if _, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
			ProductoID:   ln.ProductoID,
			Signo:        entity.SignoEntrada,
			Cantidad:     decimal.NewFromInt(ln.Cantidad),
			Origen:       entity.OrigenCompra,
			ReferenciaID: compraID,
			UserID:       userID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}

// reverseDetalles emite una entrada compensatoria (-1) por cada línea
// persistida de la compra. El historial nunca se reescribe.
func reverseDetalles(r ports.Repos, compraID, userID string, now time.Time) error {
	detalles, err := r.Compras.GetDetalles(compraID)
	if err != nil {
		return err
	}
	for _, det := range detalles {
		if _, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
			ProductoID:   det.ProductoID,
			Signo:        entity.SignoSalida,
			Cantidad:     decimal.NewFromInt(det.Cantidad),
			Origen:       entity.OrigenCompra,
			ReferenciaID: compraID,
			Nota:         "reverso por edición/borrado",
			UserID:       userID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}

func toResponse(c *entity.Compra, detalles []*entity.CompraDetalle) *dto.CompraResponse {
	resp := &dto.CompraResponse{
		ID:            c.ID,
		ProveedorID:   c.ProveedorID,
		Fecha:         c.Fecha.Format(time.RFC3339),
		MedioPago:     c.MedioPago,
		Factura:       c.Factura,
		TotalCompra:   c.TotalCompra,
		TotalDisplay:  money.FormatAmount(c.TotalCompra),
		CantidadTotal: c.CantidadTotal,
		Estado:        c.Estado,
	}
	for _, det := range detalles {
		resp.Detalles = append(resp.Detalles, dto.DetalleResponse{
			ID:              det.ID,
			ProductoID:      det.ProductoID,
			Cantidad:        det.Cantidad,
			PrecioUnitario:  det.PrecioUnitario,
			Subtotal:        det.Subtotal,
			SubtotalDisplay: money.FormatAmount(det.Subtotal),
		})
	}
	return resp
}
