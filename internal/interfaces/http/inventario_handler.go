package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/application/inventory"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

// InventarioHandler expone el libro de movimientos: ajustes manuales y
// consultas. Las entradas causadas por documentos las emiten los propios
// casos de uso de compras, ventas y obras.
type InventarioHandler struct {
	uc *inventory.UseCase
}

// NewInventarioHandler construye el handler.
func NewInventarioHandler(uc *inventory.UseCase) *InventarioHandler {
	return &InventarioHandler{uc: uc}
}

// RegisterAjuste godoc
// @Summary      Registrar ajuste manual de stock
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovimientoRequest  true  "Ajuste (+1 entrada, -1 salida)"
// @Success      201   {object}  dto.MovimientoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos [post]
func (h *InventarioHandler) RegisterAjuste(c *fiber.Ctx) error {
	var in dto.RegisterMovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.ApplyMovement(c.Context(), inventory.MovimientoInput{
		ProductoID: in.ProductoID,
		Signo:      in.Signo,
		Cantidad:   in.Cantidad,
		Origen:     entity.OrigenAjuste,
		Nota:       in.Nota,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovimientoResponse(mov))
}

// ListMovimientos godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        producto_id  query  string  false  "Filtrar por producto"
// @Param        origen       query  string  false  "compra, venta, obra o ajuste"
// @Param        desde        query  string  false  "RFC 3339"
// @Param        hasta        query  string  false  "RFC 3339"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovimientoResponse
// @Router       /api/inventario/movimientos [get]
func (h *InventarioHandler) ListMovimientos(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	filter := repository.MovimientoFilter{
		ProductoID: c.Query("producto_id"),
		Origen:     c.Query("origen"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	var err error
	if filter.Desde, err = parseFechaQuery(c.Query("desde")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde: fecha inválida, use RFC 3339"})
	}
	if filter.Hasta, err = parseFechaQuery(c.Query("hasta")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta: fecha inválida, use RFC 3339"})
	}
	movs, err := h.uc.List(filter)
	if err != nil {
		return fail(c, err)
	}
	out := make([]*dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovimientoResponse(m))
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Stock actual de un producto (agregado del libro)
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventario/stock/{id} [get]
func (h *InventarioHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	stock, err := h.uc.CurrentStock(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.StockResponse{ProductoID: id, Stock: stock})
}

func toMovimientoResponse(m *entity.MovimientoStock) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:           m.ID,
		ProductoID:   m.ProductoID,
		Signo:        m.Signo,
		Cantidad:     m.Cantidad,
		Origen:       m.Origen,
		ReferenciaID: m.ReferenciaID,
		Nota:         m.Nota,
		Fecha:        m.Fecha.Format(time.RFC3339),
	}
}

func parseFechaQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
