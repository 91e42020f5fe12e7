package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo registro de claves de idempotencia sobre PostgreSQL.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get obtiene la clave registrada o nil.
func (r *IdempotencyRepo) Get(ctx context.Context, tenantID, key string) (*entity.IdempotencyKey, error) {
	query := `
		SELECT key, tenant_id, operation, resource_id, response, created_by, created_at
		FROM idempotency_keys WHERE tenant_id = $1 AND key = $2`
	var k entity.IdempotencyKey
	err := r.q.QueryRow(ctx, query, tenantID, key).Scan(
		&k.Key, &k.TenantID, &k.Operation, &k.ResourceID, &k.Response, &k.CreatedBy, &k.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return &k, nil
}

// Create registra la clave con la respuesta serializada.
func (r *IdempotencyRepo) Create(ctx context.Context, k *entity.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (key, tenant_id, operation, resource_id, response, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, k.Key, k.TenantID, k.Operation, k.ResourceID, []byte(k.Response), k.CreatedBy, k.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	return nil
}
