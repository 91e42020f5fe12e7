package repository

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// StockMovementRepository libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByUnit(ctx context.Context, tenantID, unitID string) ([]*entity.StockMovement, error)
	ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.StockMovement, error)
	ListSince(ctx context.Context, tenantID string, since time.Time) ([]*entity.StockMovement, error)
}
