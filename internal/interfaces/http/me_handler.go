package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
)

// MeHandler datos del usuario autenticado y de su tenant.
type MeHandler struct {
	users   *usecase.UserUseCase
	tenants *usecase.TenantUseCase
}

// NewMeHandler construye el handler.
func NewMeHandler(users *usecase.UserUseCase, tenants *usecase.TenantUseCase) *MeHandler {
	return &MeHandler{users: users, tenants: tenants}
}

// User godoc
// @Summary      Usuario autenticado
// @Tags         me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func (h *MeHandler) User(c *fiber.Ctx) error {
	out, err := h.users.GetByID(c.Context(), GetTenantID(c), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Tenant godoc
// @Summary      Tenant del usuario autenticado
// @Tags         me
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TenantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tenants/me [get]
func (h *MeHandler) Tenant(c *fiber.Ctx) error {
	out, err := h.tenants.GetByID(c.Context(), GetTenantID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
