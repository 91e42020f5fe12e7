package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/auth"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
)

// AuthHandler login público y alta de usuarios por el administrador del municipio.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Alta de usuario en el municipio del administrador
// @Description  Sin rol el usuario queda como staff. Los permisos por dependencia se asignan en /api/rbac.
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, name, role"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if !bind(c, &in) {
		return nil
	}
	user, err := h.uc.RegisterUser(c.Context(), GetTenantID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  tenant_code es opcional si el email existe en un solo municipio.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password, tenant_code"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Login(c.Context(), in)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Email desconocido responde igual que contraseña incorrecta.
		err = domain.ErrUnauthorized
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
