package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/tickets"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// TicketHandler tickets de soporte con SLA (protegido).
type TicketHandler struct {
	uc *tickets.UseCase
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *tickets.UseCase) *TicketHandler {
	return &TicketHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ticket
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTicketRequest  true  "title, description, priority"
// @Success      201   {object}  dto.TicketResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Router       /api/tickets [post]
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTicketRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar tickets
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "OPEN, IN_PROGRESS, WAITING, RESOLVED, CLOSED"
// @Param        priority     query  string  false  "LOW, MEDIUM, HIGH, CRITICAL"
// @Param        assignee_id  query  string  false  "Asignado"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TicketListResponse
// @Router       /api/tickets [get]
func (h *TicketHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.Context(), actorFrom(c), entity.TicketFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssigneeID: c.Query("assignee_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener ticket con su hilo
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ticket"
// @Success      200  {object}  dto.TicketDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// AddMessage godoc
// @Summary      Responder en el hilo
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ticket"
// @Param        body  body  dto.AddMessageRequest  true  "body"
// @Success      201   {object}  dto.TicketMessageResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/messages [post]
func (h *TicketHandler) AddMessage(c *fiber.Ctx) error {
	var in dto.AddMessageRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.AddMessage(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del ticket
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del ticket"
// @Param        body  body  dto.ChangeTicketStatusRequest  true  "to, note"
// @Success      200   {object}  dto.TicketResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/status [post]
func (h *TicketHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeTicketStatusRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.ChangeStatus(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Escalate godoc
// @Summary      Escalar ticket al siguiente nivel
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del ticket"
// @Param        body  body  dto.EscalateTicketRequest  false  "note"
// @Success      200   {object}  dto.TicketResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/escalate [post]
func (h *TicketHandler) Escalate(c *fiber.Ctx) error {
	var in dto.EscalateTicketRequest
	if len(c.Body()) > 0 && !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Escalate(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// LinkRequest godoc
// @Summary      Vincular una requisición al ticket
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ticket"
// @Param        body  body  dto.LinkRequestRequest  true  "request_id"
// @Success      200   {object}  dto.TicketResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/requests [post]
func (h *TicketHandler) LinkRequest(c *fiber.Ctx) error {
	var in dto.LinkRequestRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.LinkRequest(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// SLA godoc
// @Summary      Estado de SLA del ticket
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ticket"
// @Success      200  {object}  dto.SLAStateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tickets/{id}/sla [get]
func (h *TicketHandler) SLA(c *fiber.Ctx) error {
	out, err := h.uc.SLAState(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
