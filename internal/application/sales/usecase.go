// Package sales implementa las ventas a cliente. Misma mecánica documental
// que las compras pero con salidas de stock, de modo que antes de persistir
// se verifica disponibilidad por línea.
package sales

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

// UseCase casos de uso de ventas.
type UseCase struct {
	txRunner  ports.TxRunner
	ventas    repository.VentaRepository
	clientes  repository.ClienteRepository
	productos repository.ProductoRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	ventas repository.VentaRepository,
	clientes repository.ClienteRepository,
	productos repository.ProductoRepository,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ventas:    ventas,
		clientes:  clientes,
		productos: productos,
	}
}

// Create guarda una venta nueva: cabecera + detalles + una salida de stock
// (-1) por línea, en una transacción. La disponibilidad se verifica con la
// fila del producto bloqueada, así dos ventas concurrentes del mismo
// producto se serializan y no pueden dejar el stock negativo.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.SaveVentaRequest) (*dto.VentaResponse, error) {
	lines, fecha, err := uc.prepare(in)
	if err != nil {
		return nil, err
	}

	total, cantidad := document.Totals(lines)
	now := time.Now()
	venta := &entity.Venta{
		ID:         uuid.New().String(),
		ClienteID:  in.ClienteID,
		Fecha:      fecha,
		MedioPago:  in.MedioPago,
		TotalVenta: total,
		Cantidad:   cantidad,
		Estado:     entity.EstadoActiva,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Ventas.Create(venta); err != nil {
			return err
		}
		return insertDetalles(r, venta.ID, lines, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(venta.ID)
}

// Update edita una venta por reemplazo completo del detalle, en una sola
// transacción: reverso de las salidas anteriores, DELETE de detalles,
// INSERT del borrador actual y UPDATE de la cabecera. El reverso se aplica
// antes de verificar disponibilidad, así reducir la cantidad de una línea
// nunca falla por stock aunque el producto esté agotado.
func (uc *UseCase) Update(ctx context.Context, userID, ventaID string, in dto.SaveVentaRequest) (*dto.VentaResponse, error) {
	existing, err := uc.ventas.GetByID(ventaID)
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
		if err := reverseDetalles(r, ventaID, userID, now); err != nil {
			return err
		}
		if err := r.Ventas.DeleteDetalles(ventaID); err != nil {
			return err
		}
		if err := insertDetalles(r, ventaID, lines, userID, now); err != nil {
			return err
		}
		existing.ClienteID = in.ClienteID
		existing.Fecha = fecha
		existing.MedioPago = in.MedioPago
		existing.TotalVenta = total
		existing.Cantidad = cantidad
		existing.UpdatedAt = now
		return r.Ventas.Update(existing)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ventaID)
}

// Delete borra una venta devolviendo el stock mediante entradas
// compensatorias. ErrReferenced indica que el borrado está bloqueado y el
// caller debe ofrecer SoftClose.
func (uc *UseCase) Delete(ctx context.Context, userID, ventaID string) error {
	existing, err := uc.ventas.GetByID(ventaID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := reverseDetalles(r, ventaID, userID, now); err != nil {
			return err
		}
		if err := r.Ventas.DeleteDetalles(ventaID); err != nil {
			return err
		}
		return r.Ventas.Delete(ventaID)
	})
}

// SoftClose marca la venta como Cerrada.
func (uc *UseCase) SoftClose(ventaID string) error {
	existing, err := uc.ventas.GetByID(ventaID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return uc.ventas.SetEstado(ventaID, entity.EstadoCerrada)
}

// GetByID devuelve la venta con sus detalles.
func (uc *UseCase) GetByID(ventaID string) (*dto.VentaResponse, error) {
	venta, err := uc.ventas.GetByID(ventaID)
	if err != nil {
		return nil, err
	}
	if venta == nil {
		return nil, domain.ErrNotFound
	}
	detalles, err := uc.ventas.GetDetalles(ventaID)
	if err != nil {
		return nil, err
	}
	return toResponse(venta, detalles), nil
}

// List devuelve ventas (opcionalmente de un cliente).
func (uc *UseCase) List(clienteID string, limit, offset int) ([]*dto.VentaResponse, error) {
	ventas, err := uc.ventas.List(clienteID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VentaResponse, 0, len(ventas))
	for _, v := range ventas {
		out = append(out, toResponse(v, nil))
	}
	return out, nil
}

// prepare valida el request y arma las líneas. Precio en cero usa el precio
// de venta vigente del producto como snapshot.
func (uc *UseCase) prepare(in dto.SaveVentaRequest) ([]document.Line, time.Time, error) {
	if in.ClienteID == "" || in.MedioPago == "" || len(in.Detalles) == 0 {
		return nil, time.Time{}, domain.ErrInvalidInput
	}

	cliente, err := uc.clientes.GetByID(in.ClienteID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if cliente == nil {
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
			precio = producto.PrecioVenta
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

// insertDetalles inserta las líneas y una salida de stock por línea,
// verificando antes la disponibilidad con la fila bloqueada.
func insertDetalles(r ports.Repos, ventaID string, lines []document.Line, userID string, now time.Time) error {
	for _, ln := range lines {
		cantidad := decimal.NewFromInt(ln.Cantidad)
		if err := inventory.EnsureStock(r, ln.ProductoID, cantidad); err != nil {
			return err
		}
		det := &entity.VentaDetalle{
			ID:             uuid.New().String(),
			VentaID:        ventaID,
			ProductoID:     ln.ProductoID,
			Cantidad:       ln.Cantidad,
			PrecioUnitario: ln.PrecioUnitario,
			Subtotal:       ln.Subtotal,
		}
		if err := r.Ventas.CreateDetalle(det); err != nil {
			return err
		}
		if _, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
			ProductoID:   ln.ProductoID,
			Signo:        entity.SignoSalida,
			Cantidad:     cantidad,
			Origen:       entity.OrigenVenta,
			ReferenciaID: ventaID,
			UserID:       userID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}

// reverseDetalles devuelve al stock lo descontado por la venta (entradas
// compensatorias, el historial no se reescribe).
func reverseDetalles(r ports.Repos, ventaID, userID string, now time.Time) error {
	detalles, err := r.Ventas.GetDetalles(ventaID)
	if err != nil {
		return err
	}
	for _, det := range detalles {
		if _, err := inventory.ApplyInTx(r, inventory.MovimientoInput{
			ProductoID:   det.ProductoID,
			Signo:        entity.SignoEntrada,
			Cantidad:     decimal.NewFromInt(det.Cantidad),
			Origen:       entity.OrigenVenta,
			ReferenciaID: ventaID,
			Nota:         "reverso por edición/borrado",
			UserID:       userID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}

func toResponse(v *entity.Venta, detalles []*entity.VentaDetalle) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:           v.ID,
		ClienteID:    v.ClienteID,
		Fecha:        v.Fecha.Format(time.RFC3339),
		MedioPago:    v.MedioPago,
		TotalVenta:   v.TotalVenta,
		TotalDisplay: money.FormatAmount(v.TotalVenta),
		Cantidad:     v.Cantidad,
		Estado:       v.Estado,
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
