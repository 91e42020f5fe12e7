package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, tenant_id, product_id, unit_id, request_id, invoice_id, type, quantity, from_status, to_status, reason, created_at, created_by`

// StockMovementRepo libro de movimientos sobre PostgreSQL (solo inserción y lectura).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ProductID, nullable(m.UnitID), nullable(m.RequestID), nullable(m.InvoiceID),
		m.Type, m.Quantity, m.FromStatus, m.ToStatus, m.Reason, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByUnit movimientos de una unidad en orden cronológico.
func (r *StockMovementRepo) ListByUnit(ctx context.Context, tenantID, unitID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `WHERE tenant_id = $1 AND unit_id = $2 ORDER BY created_at, id`, tenantID, unitID)
}

// ListByRequest movimientos generados por una requisición.
func (r *StockMovementRepo) ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `WHERE tenant_id = $1 AND request_id = $2 ORDER BY created_at, id`, tenantID, requestID)
}

// ListSince movimientos del tenant desde since.
func (r *StockMovementRepo) ListSince(ctx context.Context, tenantID string, since time.Time) ([]*entity.StockMovement, error) {
	return r.list(ctx, `WHERE tenant_id = $1 AND created_at >= $2 ORDER BY created_at, id`, tenantID, since)
}

func (r *StockMovementRepo) list(ctx context.Context, where string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m                            entity.StockMovement
			unitID, requestID, invoiceID *string
		)
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &unitID, &requestID, &invoiceID,
			&m.Type, &m.Quantity, &m.FromStatus, &m.ToStatus, &m.Reason, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, err
		}
		m.UnitID, m.RequestID, m.InvoiceID = deref(unitID), deref(requestID), deref(invoiceID)
		list = append(list, &m)
	}
	return list, rows.Err()
}
