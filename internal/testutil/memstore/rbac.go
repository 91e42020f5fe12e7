package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.RbacRepository = (*rbacRepo)(nil)

type rbacRepo struct{ s *Store }

func (r *rbacRepo) CreateRole(_ context.Context, role *entity.RbacRole) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.roles {
			if e.TenantID == role.TenantID && e.Name == role.Name {
				return domain.ErrDuplicate
			}
		}
		cp := *role
		cp.Permissions = append([]string(nil), role.Permissions...)
		st.roles[role.ID] = cp
		return nil
	})
}

func (r *rbacRepo) GetRole(_ context.Context, tenantID, id string) (*entity.RbacRole, error) {
	var out *entity.RbacRole
	r.s.read(func(st *state) {
		if v, ok := st.roles[id]; ok && v.TenantID == tenantID {
			v.Permissions = append([]string(nil), v.Permissions...)
			out = &v
		}
	})
	return out, nil
}

func (r *rbacRepo) ListRoles(_ context.Context, tenantID string) ([]*entity.RbacRole, error) {
	var out []*entity.RbacRole
	r.s.read(func(st *state) {
		for _, v := range st.roles {
			if v.TenantID == tenantID {
				v := v
				v.Permissions = append([]string(nil), v.Permissions...)
				out = append(out, &v)
			}
		}
	})
	sortBy(out, func(v *entity.RbacRole) string { return v.Name })
	return out, nil
}

func (r *rbacRepo) CreateAssignment(_ context.Context, a *entity.RbacAssignment) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.assignments {
			if e.TenantID == a.TenantID && e.UserID == a.UserID && e.RoleID == a.RoleID && e.ServiceID == a.ServiceID {
				return domain.ErrDuplicate
			}
		}
		st.assignments[a.ID] = *a
		return nil
	})
}

func (r *rbacRepo) DeleteAssignment(_ context.Context, tenantID, id string) error {
	return r.s.write(func(st *state) error {
		a, ok := st.assignments[id]
		if !ok || a.TenantID != tenantID {
			return domain.ErrNotFound
		}
		delete(st.assignments, id)
		return nil
	})
}

func (r *rbacRepo) ListAssignments(_ context.Context, tenantID string) ([]*entity.RbacAssignment, error) {
	var out []*entity.RbacAssignment
	r.s.read(func(st *state) {
		for _, v := range st.assignments {
			if v.TenantID == tenantID {
				v := v
				out = append(out, &v)
			}
		}
	})
	sortByCreated(out, func(a *entity.RbacAssignment) time.Time { return a.CreatedAt }, func(a *entity.RbacAssignment) string { return a.ID })
	return out, nil
}
