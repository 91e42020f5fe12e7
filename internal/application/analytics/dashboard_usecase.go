// Package analytics contiene el caso de uso del dashboard operativo.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// movementsWindow ventana del widget de movimientos recientes.
const movementsWindow = 7 * 24 * time.Hour

// DashboardUseCase genera el resumen operativo del tenant.
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para el tenant indicado.
// Las cinco consultas corren en paralelo; la primera que falla cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, tenantID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	out := &dto.DashboardSummaryDTO{GeneratedAt: now, DateLabel: monthLabel(now)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := uc.analyticsRepo.CountRequestsByStatus(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("dashboard: requisiciones por estado: %w", err)
		}
		out.RequestsByStatus = m
		return nil
	})
	g.Go(func() error {
		m, err := uc.analyticsRepo.CountUnitsByStatus(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("dashboard: unidades por estado: %w", err)
		}
		out.UnitsByStatus = m
		return nil
	})
	g.Go(func() error {
		n, err := uc.analyticsRepo.CountOpenTickets(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("dashboard: tickets abiertos: %w", err)
		}
		out.OpenTickets = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.analyticsRepo.CountSLABreaches(gctx, tenantID, now)
		if err != nil {
			return fmt.Errorf("dashboard: incumplimientos de SLA: %w", err)
		}
		out.SLABreaches = n
		return nil
	})
	g.Go(func() error {
		m, err := uc.analyticsRepo.CountMovementsSince(gctx, tenantID, now.Add(-movementsWindow))
		if err != nil {
			return fmt.Errorf("dashboard: movimientos recientes: %w", err)
		}
		out.MovementsLast7Days = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
