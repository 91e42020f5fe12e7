// Package rbac administra roles personalizados por tenant y sus asignaciones
// a usuarios, con alcance opcional a una dependencia.
package rbac

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

var permissionRe = regexp.MustCompile(`^([a-z][a-z_]*|\*):([a-z][a-z_]*|\*)$`)

// ValidPermission informa si p tiene la forma "objeto:acción" (comodín "*" permitido).
func ValidPermission(p string) bool {
	return permissionRe.MatchString(p)
}

// UseCase casos de uso de RBAC.
type UseCase struct {
	repos ports.Repos
	az    ports.Authorizer
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repos ports.Repos, az ports.Authorizer) *UseCase {
	return &UseCase{repos: repos, az: az, now: time.Now}
}

// CreateRole crea un rol con permisos normalizados (minúsculas, sin duplicados).
func (uc *UseCase) CreateRole(ctx context.Context, actor ports.Actor, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermRbacManage); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(in.Permissions) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Permissions))
	perms := make([]string, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		p = strings.ToLower(strings.TrimSpace(p))
		if !ValidPermission(p) {
			return nil, domain.ErrInvalidInput
		}
		if !seen[p] {
			seen[p] = true
			perms = append(perms, p)
		}
	}
	sort.Strings(perms)
	now := uc.now()
	role := &entity.RbacRole{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Name:        name,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repos.Rbac.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	uc.az.Invalidate(actor.TenantID)
	out := roleResponse(role)
	return &out, nil
}

// ListRoles roles del tenant.
func (uc *UseCase) ListRoles(ctx context.Context, actor ports.Actor) ([]dto.RoleResponse, error) {
	list, err := uc.repos.Rbac.ListRoles(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, roleResponse(r))
	}
	return out, nil
}

// Assign otorga un rol a un usuario, en todo el tenant o en una dependencia.
func (uc *UseCase) Assign(ctx context.Context, actor ports.Actor, in dto.AssignRoleRequest) (*dto.AssignmentResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermRbacManage); err != nil {
		return nil, err
	}
	role, err := uc.repos.Rbac.GetRole(ctx, actor.TenantID, in.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.repos.Users.GetByID(ctx, actor.TenantID, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if in.ServiceID != "" {
		svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, domain.ErrNotFound
		}
	}
	a := &entity.RbacAssignment{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		UserID:    user.ID,
		RoleID:    role.ID,
		ServiceID: in.ServiceID,
		CreatedAt: uc.now(),
		CreatedBy: actor.UserID,
	}
	if err := uc.repos.Rbac.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	uc.az.Invalidate(actor.TenantID)
	out := assignmentResponse(a)
	return &out, nil
}

// Revoke elimina una asignación.
func (uc *UseCase) Revoke(ctx context.Context, actor ports.Actor, assignmentID string) error {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermRbacManage); err != nil {
		return err
	}
	if err := uc.repos.Rbac.DeleteAssignment(ctx, actor.TenantID, assignmentID); err != nil {
		return err
	}
	uc.az.Invalidate(actor.TenantID)
	return nil
}

// ListAssignments asignaciones del tenant.
func (uc *UseCase) ListAssignments(ctx context.Context, actor ports.Actor) ([]dto.AssignmentResponse, error) {
	list, err := uc.repos.Rbac.ListAssignments(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentResponse(a))
	}
	return out, nil
}

// Can verifica un permiso para userID. Consultar a otro usuario exige rbac:manage.
func (uc *UseCase) Can(ctx context.Context, actor ports.Actor, userID, serviceID, permission string) (*dto.PermissionCheckResponse, error) {
	permission = strings.ToLower(strings.TrimSpace(permission))
	if !ValidPermission(permission) || strings.Contains(permission, "*") {
		return nil, domain.ErrInvalidInput
	}
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID {
		if err := ports.Require(ctx, uc.az, actor, "", entity.PermRbacManage); err != nil {
			return nil, err
		}
	}
	user, err := uc.repos.Users.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	ok, err := uc.az.Can(ctx, ports.Actor{TenantID: actor.TenantID, UserID: user.ID, Role: user.Role}, serviceID, permission)
	if err != nil {
		return nil, err
	}
	return &dto.PermissionCheckResponse{UserID: user.ID, ServiceID: serviceID, Permission: permission, Allowed: ok}, nil
}

func roleResponse(r *entity.RbacRole) dto.RoleResponse {
	return dto.RoleResponse{ID: r.ID, Name: r.Name, Permissions: r.Permissions, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func assignmentResponse(a *entity.RbacAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{ID: a.ID, UserID: a.UserID, RoleID: a.RoleID, ServiceID: a.ServiceID, CreatedAt: a.CreatedAt, CreatedBy: a.CreatedBy}
}
