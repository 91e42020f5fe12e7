package repository

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// IdempotencyRepository registro de claves de idempotencia.
type IdempotencyRepository interface {
	Get(ctx context.Context, tenantID, key string) (*entity.IdempotencyKey, error)
	// Create devuelve domain.ErrDuplicate si la clave ya existe (otra ejecución ganó la carrera).
	Create(ctx context.Context, k *entity.IdempotencyKey) error
}
