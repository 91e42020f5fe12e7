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

var _ repository.RbacRepository = (*RbacRepo)(nil)

// RbacRepo roles personalizados y asignaciones sobre PostgreSQL.
type RbacRepo struct {
	q Querier
}

// NewRbacRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRbacRepository(q Querier) *RbacRepo {
	return &RbacRepo{q: q}
}

// CreateRole inserta un rol; domain.ErrDuplicate si el nombre ya existe en el tenant.
func (r *RbacRepo) CreateRole(ctx context.Context, role *entity.RbacRole) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rbac_roles (id, tenant_id, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		role.ID, role.TenantID, role.Name, role.Permissions, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert rbac role: %w", err)
	}
	return nil
}

// GetRole obtiene un rol por ID.
func (r *RbacRepo) GetRole(ctx context.Context, tenantID, id string) (*entity.RbacRole, error) {
	var role entity.RbacRole
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, name, permissions, created_at, updated_at
		FROM rbac_roles WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&role.ID, &role.TenantID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rbac role: %w", err)
	}
	return &role, nil
}

// ListRoles roles del tenant ordenados por nombre.
func (r *RbacRepo) ListRoles(ctx context.Context, tenantID string) ([]*entity.RbacRole, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, name, permissions, created_at, updated_at
		FROM rbac_roles WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list rbac roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.RbacRole
	for rows.Next() {
		var role entity.RbacRole
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &role)
	}
	return list, rows.Err()
}

// CreateAssignment inserta una asignación; domain.ErrDuplicate si (user, role, service) ya existe.
func (r *RbacRepo) CreateAssignment(ctx context.Context, a *entity.RbacAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rbac_assignments (id, tenant_id, user_id, role_id, service_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.TenantID, a.UserID, a.RoleID, nullable(a.ServiceID), a.CreatedAt, a.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert rbac assignment: %w", err)
	}
	return nil
}

// DeleteAssignment elimina una asignación; domain.ErrNotFound si no existe.
func (r *RbacRepo) DeleteAssignment(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM rbac_assignments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete rbac assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAssignments asignaciones del tenant.
func (r *RbacRepo) ListAssignments(ctx context.Context, tenantID string) ([]*entity.RbacAssignment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, user_id, role_id, service_id, created_at, created_by
		FROM rbac_assignments WHERE tenant_id = $1 ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list rbac assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.RbacAssignment
	for rows.Next() {
		var (
			a         entity.RbacAssignment
			serviceID *string
		)
		if err := rows.Scan(&a.ID, &a.TenantID, &a.UserID, &a.RoleID, &serviceID, &a.CreatedAt, &a.CreatedBy); err != nil {
			return nil, err
		}
		a.ServiceID = deref(serviceID)
		list = append(list, &a)
	}
	return list, rows.Err()
}
