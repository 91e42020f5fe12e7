package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/units"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// UnitHandler unidades serializadas, sustitución y recepción de stock (protegido).
type UnitHandler struct {
	uc *units.UseCase
}

// NewUnitHandler construye el handler.
func NewUnitHandler(uc *units.UseCase) *UnitHandler {
	return &UnitHandler{uc: uc}
}

// List godoc
// @Summary      Listar unidades
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        status       query  string  false  "IN_STOCK, ACQUIRED, IN_REPAIR, SCRAPPED, LOST"
// @Param        assigned_to  query  string  false  "Usuario tenedor"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.UnitListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *UnitHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.Context(), actorFrom(c), entity.UnitFilter{
		ProductID:  c.Query("product_id"),
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener unidad
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id} [get]
func (h *UnitHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// GetByCode godoc
// @Summary      Buscar unidad por código (escáner)
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de la unidad"
// @Success      200   {object}  dto.UnitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/scan/{code} [get]
func (h *UnitHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.Context(), actorFrom(c), c.Params("code"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos de una unidad
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id}/movements [get]
func (h *UnitHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambiar estado de una unidad
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la unidad"
// @Param        body  body  dto.TransitionUnitRequest  true  "to, reason, assignee_id"
// @Success      200   {object}  dto.TransitionUnitResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units/{id}/transition [post]
func (h *UnitHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionUnitRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Transition(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Substitute godoc
// @Summary      Sustituir un equipo entregado por otro en stock
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubstituteRequest  true  "old_code, new_code, retire_to, reason"
// @Success      200   {object}  dto.SubstituteResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/scan/substitute [post]
func (h *UnitHandler) Substitute(c *fiber.Ctx) error {
	var in dto.SubstituteRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Substitute(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ReceiveInvoice godoc
// @Summary      Registrar entrada de stock por factura de proveedor
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveInvoiceRequest  true  "supplier, number, lines"
// @Success      201   {object}  dto.ReceiveInvoiceResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/invoices [post]
func (h *UnitHandler) ReceiveInvoice(c *fiber.Ctx) error {
	var in dto.ReceiveInvoiceRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.ReceiveInvoice(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
