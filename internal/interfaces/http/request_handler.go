package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/requests"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// Cabeceras del flujo de entrega idempotente.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// RequestHandler maneja el ciclo de vida de las requisiciones (protegido).
type RequestHandler struct {
	uc *requests.UseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *requests.UseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create godoc
// @Summary      Crear requisición (DRAFT)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "service_id, notes, items"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
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
// @Summary      Listar requisiciones
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "DRAFT, SUBMITTED, APPROVED, REJECTED, FULFILLED, CANCELLED"
// @Param        service_id  query  string  false  "Dependencia"
// @Param        mine        query  bool    false  "Solo las del usuario"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RequestListResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	f := entity.RequestFilter{
		Status:    c.Query("status"),
		ServiceID: c.Query("service_id"),
		Limit:     limit,
		Offset:    offset,
	}
	if c.QueryBool("mine") {
		f.RequesterID = GetUserID(c)
	}
	out, err := h.uc.List(c.Context(), actorFrom(c), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener requisición
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la requisición"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Events godoc
// @Summary      Bitácora de la requisición
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la requisición"
// @Success      200  {array}   dto.RequestEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/events [get]
func (h *RequestHandler) Events(c *fiber.Ctx) error {
	out, err := h.uc.Events(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// UpdateDraft godoc
// @Summary      Reemplazar líneas de un borrador
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la requisición"
// @Param        body  body  dto.UpdateDraftRequest  true  "notes, items"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) UpdateDraft(c *fiber.Ctx) error {
	var in dto.UpdateDraftRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.UpdateDraft(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar requisición (DRAFT -> SUBMITTED)
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la requisición"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.Submit(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar requisición con firma
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la requisición"
// @Param        body  body  dto.SignatureInput  true  "signer_name, signature"
// @Success      200   {object}  dto.RequestResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.SignatureInput
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Approve(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar requisición
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la requisición"
// @Param        body  body  dto.RejectRequestRequest  true  "reason"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequestRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Reject(c.Context(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar requisición (solo solicitante)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la requisición"
// @Param        body  body  dto.CancelRequestRequest  false "reason"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequestRequest
	if len(c.Body()) > 0 && !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Cancel(c.Context(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// LockForPickup godoc
// @Summary      Tomar el bloqueo de firma de retiro
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la requisición"
// @Success      200  {object}  dto.PickupLockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/pickup-lock [post]
func (h *RequestHandler) LockForPickup(c *fiber.Ctx) error {
	out, err := h.uc.LockForPickup(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// SignPickup godoc
// @Summary      Firmar el retiro (requiere bloqueo vigente)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la requisición"
// @Param        body  body  dto.SignatureInput  true  "signer_name, signature"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/pickup-sign [post]
func (h *RequestHandler) SignPickup(c *fiber.Ctx) error {
	var in dto.SignatureInput
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.SignPickup(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Execute godoc
// @Summary      Entregar en almacén (APPROVED -> FULFILLED), idempotente
// @Description  Reintentos con la misma Idempotency-Key devuelven la respuesta original con Idempotent-Replayed: true.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string                     true   "ID de la requisición"
// @Param        Idempotency-Key  header  string                     true   "8 a 128 caracteres"
// @Param        body             body    dto.ExecuteRequestRequest  false  "notes"
// @Success      200  {object}  dto.ExecuteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/execute [post]
func (h *RequestHandler) Execute(c *fiber.Ctx) error {
	key := c.Get(HeaderIdempotencyKey)
	if len(key) < requests.MinIdempotencyKeyLen || len(key) > requests.MaxIdempotencyKeyLen {
		return badRequest(c, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key requerido (8 a 128 caracteres)")
	}
	var in dto.ExecuteRequestRequest
	if len(c.Body()) > 0 && !bind(c, &in) {
		return nil
	}
	out, replayed, err := h.uc.Execute(c.Context(), actorFrom(c), c.Params("id"), key, in)
	if err != nil {
		return fail(c, err)
	}
	if replayed {
		c.Set(HeaderReplayed, "true")
	}
	return c.JSON(out)
}
