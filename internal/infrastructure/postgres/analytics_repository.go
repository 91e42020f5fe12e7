package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard operativo.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CountRequestsByStatus conteo de requisiciones por estado.
func (r *AnalyticsRepo) CountRequestsByStatus(ctx context.Context, tenantID string) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM requests WHERE tenant_id = $1 GROUP BY status`
	return r.countBy(ctx, "requests by status", query, tenantID)
}

// CountUnitsByStatus conteo de unidades por estado.
func (r *AnalyticsRepo) CountUnitsByStatus(ctx context.Context, tenantID string) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM product_units WHERE tenant_id = $1 GROUP BY status`
	return r.countBy(ctx, "units by status", query, tenantID)
}

// CountOpenTickets tickets que no están RESOLVED ni CLOSED.
func (r *AnalyticsRepo) CountOpenTickets(ctx context.Context, tenantID string) (int, error) {
	const query = `
	SELECT COUNT(*) FROM tickets
	WHERE tenant_id = $1 AND status NOT IN ('RESOLVED', 'CLOSED')`
	var n int
	if err := r.q.QueryRow(ctx, query, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics open tickets: %w", err)
	}
	return n, nil
}

// CountSLABreaches tickets abiertos con primera respuesta o resolución vencida.
func (r *AnalyticsRepo) CountSLABreaches(ctx context.Context, tenantID string, now time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM tickets
	WHERE tenant_id = $1
	  AND status NOT IN ('RESOLVED', 'CLOSED')
	  AND (
	        (first_response_at IS NULL AND response_due_at < $2)
	     OR resolution_due_at < $2
	  )`
	var n int
	if err := r.q.QueryRow(ctx, query, tenantID, now).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics sla breaches: %w", err)
	}
	return n, nil
}

// CountMovementsSince movimientos de stock desde since, por tipo.
func (r *AnalyticsRepo) CountMovementsSince(ctx context.Context, tenantID string, since time.Time) (map[string]int, error) {
	const query = `
	SELECT type, COUNT(*) FROM stock_movements
	WHERE tenant_id = $1 AND created_at >= $2
	GROUP BY type`
	return r.countBy(ctx, "movements since", query, tenantID, since)
}

func (r *AnalyticsRepo) countBy(ctx context.Context, label, query string, args ...any) (map[string]int, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics %s: %w", label, err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("analytics %s scan: %w", label, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}
