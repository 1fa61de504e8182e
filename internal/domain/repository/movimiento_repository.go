package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/domain/entity"
)

// MovimientoFilter filtros para consultas sobre el libro de movimientos.
type MovimientoFilter struct {
	ProductoID string
	Origen     string
	Desde      *time.Time
	Hasta      *time.Time
	Limit      int
	Offset     int
}

// MovimientoRepository define el puerto del libro de movimientos de stock.
// El libro es append-only: no hay Update ni Delete; las correcciones son
// entradas compensatorias.
type MovimientoRepository interface {
	Append(mov *entity.MovimientoStock) error
	// CurrentStock calcula SUM(signo * cantidad) para el producto.
	CurrentStock(productoID string) (decimal.Decimal, error)
	List(filter MovimientoFilter) ([]*entity.MovimientoStock, error)
}
