package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/authz"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
)

// newCasbin arma el caso de uso sobre el autorizador real con caché.
func newCasbin() (*memstore.Fixture, *UseCase) {
	f := memstore.NewFixture()
	repos := f.Store.Repos()
	return f, NewUseCase(repos, authz.New(repos.Rbac, true, 0))
}

func TestValidPermission(t *testing.T) {
	for _, p := range []string{"requests:execute", "units:*", "*:*", "stock_levels:read"} {
		assert.True(t, ValidPermission(p), p)
	}
	for _, p := range []string{"", "requests", "requests:", ":execute", "Requests:Execute", "requests:execute:now", "req-uests:x"} {
		assert.False(t, ValidPermission(p), p)
	}
}

func TestCreateRole_NormalizaPermisos(t *testing.T) {
	f, uc := newCasbin()
	ctx := context.Background()

	role, err := uc.CreateRole(ctx, f.Actor(f.Admin), dto.CreateRoleRequest{
		Name:        " Almacenista ",
		Permissions: []string{" Requests:Execute ", "units:*", "requests:execute"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Almacenista", role.Name)
	assert.Equal(t, []string{"requests:execute", "units:*"}, role.Permissions)

	_, err = uc.CreateRole(ctx, f.Actor(f.Admin), dto.CreateRoleRequest{Name: "Almacenista", Permissions: []string{"units:*"}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateRole(ctx, f.Actor(f.Admin), dto.CreateRoleRequest{Name: "Malo", Permissions: []string{"requests"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateRole(ctx, f.Actor(f.Staff), dto.CreateRoleRequest{Name: "Propio", Permissions: []string{"*:*"}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	roles, err := uc.ListRoles(ctx, f.Actor(f.Staff))
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestAssign_InvalidaLaCacheDelAutorizador(t *testing.T) {
	f, uc := newCasbin()
	ctx := context.Background()
	admin := f.Actor(f.Admin)

	role, err := uc.CreateRole(ctx, admin, dto.CreateRoleRequest{Name: "Técnico", Permissions: []string{"units:*"}})
	require.NoError(t, err)

	check := func(serviceID string) bool {
		t.Helper()
		out, err := uc.Can(ctx, admin, f.Staff.ID, serviceID, "units:transition")
		require.NoError(t, err)
		return out.Allowed
	}
	assert.False(t, check(f.Service.ID), "sin asignación")

	a, err := uc.Assign(ctx, admin, dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: role.ID, ServiceID: f.Service.ID})
	require.NoError(t, err)
	assert.Equal(t, f.Admin.ID, a.CreatedBy)

	assert.True(t, check(f.Service.ID))
	assert.False(t, check(uuid.NewString()), "otra dependencia")
	assert.False(t, check(""), "asignación acotada no vale para todo el tenant")

	_, err = uc.Assign(ctx, admin, dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: role.ID, ServiceID: f.Service.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := uc.ListAssignments(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, uc.Revoke(ctx, admin, a.ID))
	assert.False(t, check(f.Service.ID))
	assert.ErrorIs(t, uc.Revoke(ctx, admin, a.ID), domain.ErrNotFound)
}

func TestAssign_Errores(t *testing.T) {
	f, uc := newCasbin()
	ctx := context.Background()
	admin := f.Actor(f.Admin)
	role, err := uc.CreateRole(ctx, admin, dto.CreateRoleRequest{Name: "Lector", Permissions: []string{"assets:manage"}})
	require.NoError(t, err)

	_, err = uc.Assign(ctx, admin, dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Assign(ctx, admin, dto.AssignRoleRequest{UserID: uuid.NewString(), RoleID: role.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Assign(ctx, admin, dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: role.ID, ServiceID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Assign(ctx, f.Actor(f.Warehouse), dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: role.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCan_ConsultaPropiaYAjena(t *testing.T) {
	f, uc := newCasbin()
	ctx := context.Background()

	own, err := uc.Can(ctx, f.Actor(f.Staff), "", f.Service.ID, " Requests:Create ")
	require.NoError(t, err)
	assert.Equal(t, f.Staff.ID, own.UserID)
	assert.Equal(t, "requests:create", own.Permission)
	assert.False(t, own.Allowed)

	_, err = uc.Can(ctx, f.Actor(f.Staff), f.Warehouse.ID, "", "requests:create")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Can(ctx, f.Actor(f.Staff), "", "", "requests:*")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Can(ctx, f.Actor(f.Admin), uuid.NewString(), "", "requests:create")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	adm, err := uc.Can(ctx, f.Actor(f.Admin), f.Admin.ID, "", "tickets:manage")
	require.NoError(t, err)
	assert.True(t, adm.Allowed)
}

func TestInvalidaAlCambiarRoles(t *testing.T) {
	f := memstore.NewFixture()
	uc := NewUseCase(f.Store.Repos(), f.Auth)
	ctx := context.Background()

	role, err := uc.CreateRole(ctx, f.Actor(f.Admin), dto.CreateRoleRequest{Name: "Mesa", Permissions: []string{"tickets:manage"}})
	require.NoError(t, err)
	a, err := uc.Assign(ctx, f.Actor(f.Admin), dto.AssignRoleRequest{UserID: f.Staff.ID, RoleID: role.ID})
	require.NoError(t, err)
	require.NoError(t, uc.Revoke(ctx, f.Actor(f.Admin), a.ID))

	assert.Equal(t, []string{f.Tenant.ID, f.Tenant.ID, f.Tenant.ID}, f.Auth.Invalidated())
}
