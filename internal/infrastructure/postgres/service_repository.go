package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo implementación de ServiceRepository sobre PostgreSQL.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

// Upsert crea la dependencia o actualiza nombre y ubicación si el código ya existe.
// Deja en svc el ID y la fecha de creación persistidos.
func (r *ServiceRepo) Upsert(ctx context.Context, svc *entity.MunicipalService) error {
	query := `
		INSERT INTO municipal_services (id, tenant_id, code, name, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, code)
		DO UPDATE SET name = EXCLUDED.name, location = EXCLUDED.location, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, svc.ID, svc.TenantID, svc.Code, svc.Name, svc.Location, svc.CreatedAt, svc.UpdatedAt).
		Scan(&svc.ID, &svc.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert municipal service: %w", err)
	}
	return nil
}

// GetByID obtiene una dependencia por ID.
func (r *ServiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.MunicipalService, error) {
	query := `
		SELECT id, tenant_id, code, name, location, created_at, updated_at
		FROM municipal_services WHERE tenant_id = $1 AND id = $2`
	var s entity.MunicipalService
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&s.ID, &s.TenantID, &s.Code, &s.Name, &s.Location, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get municipal service: %w", err)
	}
	return &s, nil
}

// List lista las dependencias del tenant ordenadas por código.
func (r *ServiceRepo) List(ctx context.Context, tenantID string) ([]*entity.MunicipalService, error) {
	query := `
		SELECT id, tenant_id, code, name, location, created_at, updated_at
		FROM municipal_services WHERE tenant_id = $1 ORDER BY code`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list municipal services: %w", err)
	}
	defer rows.Close()
	var list []*entity.MunicipalService
	for rows.Next() {
		var s entity.MunicipalService
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Code, &s.Name, &s.Location, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
