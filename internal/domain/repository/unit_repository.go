package repository

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// UnitRepository puerto de persistencia de ProductUnit.
type UnitRepository interface {
	Create(ctx context.Context, unit *entity.ProductUnit) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ProductUnit, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.ProductUnit, error)
	// GetByCodeForUpdate bloquea la fila de la unidad hasta el fin de la transacción.
	GetByCodeForUpdate(ctx context.Context, tenantID, code string) (*entity.ProductUnit, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductUnit, error)
	// PickInStock toma hasta n unidades IN_STOCK del producto, las más antiguas primero,
	// saltando las bloqueadas por otra transacción (FOR UPDATE SKIP LOCKED).
	PickInStock(ctx context.Context, tenantID, productID string, n int) ([]*entity.ProductUnit, error)
	// UpdateStatus cambia el estado solo si el actual está en from; si no afecta
	// exactamente una fila devuelve domain.ErrConflict.
	UpdateStatus(ctx context.Context, tenantID, id string, from []string, to, assignedTo string) error
	List(ctx context.Context, tenantID string, f entity.UnitFilter) ([]*entity.ProductUnit, error)
}
