package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
)

// tenantChecker contrato mínimo del middleware; lo implementa *usecase.TenantStatusService.
type tenantChecker interface {
	IsActive(ctx context.Context, tenantID string) (bool, error)
}

// RequireActiveTenant bloquea las peticiones de tenants suspendidos.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalTenantID).
//
//   - 403 TENANT_SUSPENDED → tenant suspendido o inexistente.
//   - 503 TENANT_CHECK_FAILED → fallo al consultar la DB.
func RequireActiveTenant(checker tenantChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := GetTenantID(c)
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "tenant_id no encontrado en el token",
			})
		}
		active, err := checker.IsActive(c.UserContext(), tenantID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "TENANT_CHECK_FAILED",
				Message: "no se pudo verificar el tenant, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "TENANT_SUSPENDED",
				Message: "el tenant no está activo",
			})
		}
		return c.Next()
	}
}
