// Package inventory implementa el libro de movimientos de stock: la única vía
// autorizada para modificar el stock de un producto.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/application/ports"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

// MovimientoInput entrada para aplicar un movimiento al libro.
type MovimientoInput struct {
	ProductoID   string
	Signo        int             // +1 entrada, -1 salida
	Cantidad     decimal.Decimal // siempre positiva
	Origen       string
	ReferenciaID string
	Nota         string
	UserID       string
}

// UseCase aplica movimientos y expone consultas de solo lectura sobre el libro.
type UseCase struct {
	txRunner    ports.TxRunner
	movimientos repository.MovimientoRepository
	productos   repository.ProductoRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, movimientos repository.MovimientoRepository, productos repository.ProductoRepository) *UseCase {
	return &UseCase{txRunner: txRunner, movimientos: movimientos, productos: productos}
}

// ApplyMovement aplica un movimiento aislado (ajustes manuales) en su propia
// transacción. Los movimientos causados por documentos usan ApplyInTx dentro
// de la transacción del documento.
func (uc *UseCase) ApplyMovement(ctx context.Context, in MovimientoInput) (*entity.MovimientoStock, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	producto, err := uc.productos.GetByID(in.ProductoID)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrNotFound
	}

	var mov *entity.MovimientoStock
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		mov, err = ApplyInTx(r, in, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del
// caller. Bloquea la fila del producto (SELECT ... FOR UPDATE) para serializar
// movimientos concurrentes sobre el mismo producto; el libro es la fuente de
// verdad del stock, nunca un contador incrementado aparte.
//
// No verifica suficiencia de stock: eso es regla de negocio del documento que
// origina el movimiento (las entradas compensatorias deben aplicar siempre).
func ApplyInTx(r ports.Repos, in MovimientoInput, now time.Time) (*entity.MovimientoStock, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := r.Productos.LockForMovement(in.ProductoID); err != nil {
		return nil, err
	}
	mov := &entity.MovimientoStock{
		ID:           uuid.New().String(),
		ProductoID:   in.ProductoID,
		Signo:        in.Signo,
		Cantidad:     in.Cantidad,
		Origen:       in.Origen,
		ReferenciaID: in.ReferenciaID,
		Nota:         in.Nota,
		Fecha:        now,
		CreatedBy:    in.UserID,
	}
	if err := r.Movimientos.Append(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// EnsureStock verifica dentro de la transacción que el stock actual del
// producto cubre la cantidad solicitada. Llamar después de LockForMovement
// (vía ApplyInTx del primer movimiento, o explícitamente) para que la lectura
// sea estable.
func EnsureStock(r ports.Repos, productoID string, cantidad decimal.Decimal) error {
	if err := r.Productos.LockForMovement(productoID); err != nil {
		return err
	}
	stock, err := r.Movimientos.CurrentStock(productoID)
	if err != nil {
		return err
	}
	if stock.LessThan(cantidad) {
		return domain.ErrInsufficientStock
	}
	return nil
}

// CurrentStock devuelve el stock actual de un producto (agregado del libro).
func (uc *UseCase) CurrentStock(productoID string) (decimal.Decimal, error) {
	if productoID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return uc.movimientos.CurrentStock(productoID)
}

// List devuelve el historial de movimientos con filtros.
func (uc *UseCase) List(filter repository.MovimientoFilter) ([]*entity.MovimientoStock, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.movimientos.List(filter)
}

func validate(in MovimientoInput) error {
	if in.ProductoID == "" {
		return domain.ErrInvalidInput
	}
	if in.Signo != entity.SignoEntrada && in.Signo != entity.SignoSalida {
		return domain.ErrInvalidInput
	}
	if !in.Cantidad.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	switch in.Origen {
	case entity.OrigenCompra, entity.OrigenVenta, entity.OrigenObra, entity.OrigenAjuste:
		return nil
	default:
		return domain.ErrInvalidInput
	}
}
