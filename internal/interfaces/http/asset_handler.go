package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/assets"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// AssetHandler bienes patrimoniales (protegido).
type AssetHandler struct {
	uc *assets.UseCase
}

// NewAssetHandler construye el handler.
func NewAssetHandler(uc *assets.UseCase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// List godoc
// @Summary      Listar bienes
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "ACTIVE, IN_STORAGE, IN_REPAIR, LOST, WRITTEN_OFF"
// @Param        service_id    query  string  false  "Dependencia"
// @Param        custodian_id  query  string  false  "Custodio"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AssetListResponse
// @Router       /api/assets [get]
func (h *AssetHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.Context(), actorFrom(c), entity.AssetFilter{
		Status:      c.Query("status"),
		ServiceID:   c.Query("service_id"),
		CustodianID: c.Query("custodian_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener bien
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del bien"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [get]
func (h *AssetHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de estados y movimientos del bien
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del bien"
// @Success      200  {object}  dto.AssetHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/history [get]
func (h *AssetHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.Context(), actorFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Move godoc
// @Summary      Trasladar bien
// @Tags         assets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del bien"
// @Param        body  body  dto.MoveAssetRequest  true  "to_location, to_service_id, note"
// @Success      200   {object}  dto.AssetResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/move [post]
func (h *AssetHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveAssetRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Move(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ChangeCustodian godoc
// @Summary      Cambiar custodio del bien
// @Tags         assets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del bien"
// @Param        body  body  dto.ChangeCustodianRequest  true  "custodian_id, note"
// @Success      200   {object}  dto.AssetResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/custodian [post]
func (h *AssetHandler) ChangeCustodian(c *fiber.Ctx) error {
	var in dto.ChangeCustodianRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.ChangeCustodian(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del bien
// @Tags         assets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del bien"
// @Param        body  body  dto.ChangeAssetStatusRequest  true  "to, note"
// @Success      200   {object}  dto.AssetResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/status [post]
func (h *AssetHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeAssetStatusRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.ChangeStatus(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
