package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/application/obras"
	"github.com/obrasoft/gestion-api/internal/domain"
)

// ObraHandler maneja la jerarquía obra > trabajos > gastos.
type ObraHandler struct {
	uc *obras.UseCase
}

// NewObraHandler construye el handler.
func NewObraHandler(uc *obras.UseCase) *ObraHandler {
	return &ObraHandler{uc: uc}
}

// ──────────────────────────── Obras ────────────────────────────

// Create godoc
// @Summary      Crear obra
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveObraRequest  true  "Datos de la obra"
// @Success      201   {object}  dto.ObraResponse
// @Router       /api/obras [post]
func (h *ObraHandler) Create(c *fiber.Ctx) error {
	var in dto.SaveObraRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar obra
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la obra"
// @Param        body  body  dto.SaveObraRequest  true  "Datos de la obra"
// @Success      200   {object}  dto.ObraResponse
// @Router       /api/obras/{id} [put]
func (h *ObraHandler) Update(c *fiber.Ctx) error {
	var in dto.SaveObraRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener obra por ID
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la obra"
// @Success      200  {object}  dto.ObraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/obras/{id} [get]
func (h *ObraHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar obras
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "Filtrar por estado (Activa, Finalizada, Cerrada)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.ObraResponse
// @Router       /api/obras [get]
func (h *ObraHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	out, err := h.uc.List(c.Query("estado"), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar obra
// @Tags         obras
// @Security     Bearer
// @Param        id  path  string  true  "ID de la obra"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "Bloqueada por trabajos asociados"
// @Router       /api/obras/{id} [delete]
func (h *ObraHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrReferenced) {
			return failBlockedDelete(c, "obra")
		}
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Close godoc
// @Summary      Cierre lógico de la obra (estado Cerrada, historial intacto)
// @Tags         obras
// @Security     Bearer
// @Param        id  path  string  true  "ID de la obra"
// @Success      204
// @Router       /api/obras/{id}/cerrar [post]
func (h *ObraHandler) Close(c *fiber.Ctx) error {
	if err := h.uc.SoftClose(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Costos godoc
// @Summary      Resumen de costos de la obra por etapa
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la obra"
// @Success      200  {object}  dto.ObraCostosResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/costos [get]
func (h *ObraHandler) Costos(c *fiber.Ctx) error {
	out, err := h.uc.Costos(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ──────────────────────────── Trabajos ────────────────────────────

// CreateTrabajo godoc
// @Summary      Crear trabajo (etapa) dentro de una obra
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la obra"
// @Param        body  body  dto.SaveTrabajoRequest  true  "Datos del trabajo"
// @Success      201   {object}  dto.TrabajoResponse
// @Router       /api/obras/{id}/trabajos [post]
func (h *ObraHandler) CreateTrabajo(c *fiber.Ctx) error {
	var in dto.SaveTrabajoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateTrabajo(c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateTrabajo godoc
// @Summary      Actualizar trabajo
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del trabajo"
// @Param        body  body  dto.SaveTrabajoRequest  true  "Datos del trabajo"
// @Success      200   {object}  dto.TrabajoResponse
// @Router       /api/trabajos/{id} [put]
func (h *ObraHandler) UpdateTrabajo(c *fiber.Ctx) error {
	var in dto.SaveTrabajoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateTrabajo(c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ListTrabajos godoc
// @Summary      Listar trabajos de una obra
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la obra"
// @Success      200  {array}  dto.TrabajoResponse
// @Router       /api/obras/{id}/trabajos [get]
func (h *ObraHandler) ListTrabajos(c *fiber.Ctx) error {
	out, err := h.uc.ListTrabajos(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// DeleteTrabajo godoc
// @Summary      Eliminar trabajo
// @Tags         obras
// @Security     Bearer
// @Param        id  path  string  true  "ID del trabajo"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "Bloqueado por gastos asociados"
// @Router       /api/trabajos/{id} [delete]
func (h *ObraHandler) DeleteTrabajo(c *fiber.Ctx) error {
	if err := h.uc.DeleteTrabajo(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ──────────────────────────── Gastos ────────────────────────────

// CreateGasto godoc
// @Summary      Registrar gasto en un trabajo (descuenta stock si referencia producto)
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del trabajo"
// @Param        body  body  dto.SaveGastoRequest  true  "Datos del gasto"
// @Success      201   {object}  dto.GastoResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente"
// @Router       /api/trabajos/{id}/gastos [post]
func (h *ObraHandler) CreateGasto(c *fiber.Ctx) error {
	var in dto.SaveGastoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateGasto(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListGastos godoc
// @Summary      Listar gastos de un trabajo
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del trabajo"
// @Success      200  {array}  dto.GastoResponse
// @Router       /api/trabajos/{id}/gastos [get]
func (h *ObraHandler) ListGastos(c *fiber.Ctx) error {
	out, err := h.uc.ListGastos(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// DeleteGasto godoc
// @Summary      Eliminar gasto (compensa el stock si referenciaba producto)
// @Tags         obras
// @Security     Bearer
// @Param        id  path  string  true  "ID del gasto"
// @Success      204
// @Router       /api/gastos/{id} [delete]
func (h *ObraHandler) DeleteGasto(c *fiber.Ctx) error {
	if err := h.uc.DeleteGasto(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
