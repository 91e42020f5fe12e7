package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/municipal-ops-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen operativo del tenant
// @Description  Requisiciones y unidades por estado, tickets abiertos, incumplimientos de SLA y movimientos de los últimos 7 días.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context(), GetTenantID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}
