package repository

import (
	"context"
	"time"
)

// AnalyticsRepository define las consultas de lectura para el dashboard operativo.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// CountRequestsByStatus conteo de requisiciones agrupado por estado.
	CountRequestsByStatus(ctx context.Context, tenantID string) (map[string]int, error)

	// CountUnitsByStatus conteo de unidades agrupado por estado.
	CountUnitsByStatus(ctx context.Context, tenantID string) (map[string]int, error)

	// CountOpenTickets tickets que no están RESOLVED ni CLOSED.
	CountOpenTickets(ctx context.Context, tenantID string) (int, error)

	// CountSLABreaches tickets abiertos con algún plazo pendiente vencido al instante now.
	CountSLABreaches(ctx context.Context, tenantID string, now time.Time) (int, error)

	// CountMovementsSince movimientos de stock desde since, agrupados por tipo.
	CountMovementsSince(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}
