package repository

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// RbacRepository puerto de persistencia de roles personalizados y asignaciones.
type RbacRepository interface {
	// CreateRole devuelve domain.ErrDuplicate si el nombre ya existe en el tenant.
	CreateRole(ctx context.Context, role *entity.RbacRole) error
	GetRole(ctx context.Context, tenantID, id string) (*entity.RbacRole, error)
	ListRoles(ctx context.Context, tenantID string) ([]*entity.RbacRole, error)

	// CreateAssignment devuelve domain.ErrDuplicate si (user, role, service) ya existe.
	CreateAssignment(ctx context.Context, a *entity.RbacAssignment) error
	// DeleteAssignment devuelve domain.ErrNotFound si no existe.
	DeleteAssignment(ctx context.Context, tenantID, id string) error
	ListAssignments(ctx context.Context, tenantID string) ([]*entity.RbacAssignment, error)
}
