package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

type fakeSource struct {
	roles       []*entity.RbacRole
	assignments []*entity.RbacAssignment
	loads       int
	err         error
}

func (f *fakeSource) ListRoles(_ context.Context, _ string) ([]*entity.RbacRole, error) {
	f.loads++
	return f.roles, f.err
}

func (f *fakeSource) ListAssignments(_ context.Context, _ string) ([]*entity.RbacAssignment, error) {
	return f.assignments, f.err
}

func newSource() *fakeSource {
	return &fakeSource{
		roles: []*entity.RbacRole{
			{ID: "r-approver", Permissions: []string{"requests:approve"}},
			{ID: "r-warehouse", Permissions: []string{"requests:*", "units:transition"}},
			{ID: "r-super", Permissions: []string{"*:*"}},
		},
		assignments: []*entity.RbacAssignment{
			{UserID: "u-approver", RoleID: "r-approver", ServiceID: "svc-obras"},
			{UserID: "u-warehouse", RoleID: "r-warehouse"},
			{UserID: "u-super", RoleID: "r-super", ServiceID: "svc-salud"},
		},
	}
}

func actor(userID string) ports.Actor {
	return ports.Actor{TenantID: "t1", UserID: userID, Role: entity.RoleStaff}
}

func TestCan_AdminBypassesRBAC(t *testing.T) {
	src := newSource()
	az := New(src, true, 0)

	ok, err := az.Can(context.Background(), ports.Actor{TenantID: "t1", UserID: "root", Role: entity.RoleAdmin}, "", "rbac:manage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, src.loads)
}

func TestCan_ServiceScopedAssignment(t *testing.T) {
	az := New(newSource(), true, 0)
	ctx := context.Background()

	ok, err := az.Can(ctx, actor("u-approver"), "svc-obras", entity.PermRequestsApprove)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = az.Can(ctx, actor("u-approver"), "svc-salud", entity.PermRequestsApprove)
	require.NoError(t, err)
	assert.False(t, ok, "la asignación solo vale para su dependencia")

	ok, err = az.Can(ctx, actor("u-approver"), "", entity.PermRequestsApprove)
	require.NoError(t, err)
	assert.False(t, ok, "una asignación acotada no otorga alcance de tenant")
}

func TestCan_TenantWideAssignmentAppliesToEveryService(t *testing.T) {
	az := New(newSource(), true, 0)
	ctx := context.Background()

	for _, svc := range []string{"", "svc-obras", "svc-salud"} {
		ok, err := az.Can(ctx, actor("u-warehouse"), svc, entity.PermRequestsExecute)
		require.NoError(t, err)
		assert.True(t, ok, svc)
	}
	ok, err := az.Can(ctx, actor("u-warehouse"), "svc-obras", entity.PermAssetsManage)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCan_FullWildcard(t *testing.T) {
	az := New(newSource(), true, 0)

	ok, err := az.Can(context.Background(), actor("u-super"), "svc-salud", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCan_UnknownUserDenied(t *testing.T) {
	az := New(newSource(), true, 0)

	ok, err := az.Can(context.Background(), actor("nobody"), "svc-obras", entity.PermRequestsCreate)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCan_InvalidPermission(t *testing.T) {
	az := New(newSource(), true, 0)

	_, err := az.Can(context.Background(), actor("u-warehouse"), "", "requests")
	require.Error(t, err)
}

func TestCan_CachesUntilInvalidate(t *testing.T) {
	src := newSource()
	az := New(src, true, 0)
	ctx := context.Background()

	ok, err := az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.False(t, ok)

	src.roles = append(src.roles, &entity.RbacRole{ID: "r-support", Permissions: []string{"tickets:manage"}})
	src.assignments = append(src.assignments, &entity.RbacAssignment{UserID: "u-new", RoleID: "r-support"})

	ok, err = az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.False(t, ok, "el enforcer cacheado no ve el cambio")
	assert.Equal(t, 1, src.loads)

	az.Invalidate("t1")
	ok, err = az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, src.loads)
}

func TestCan_WithoutCacheReloadsEveryCall(t *testing.T) {
	src := newSource()
	az := New(src, false, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := az.Can(ctx, actor("u-warehouse"), "", entity.PermRequestsCreate)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, src.loads)
}

func TestCan_SourceErrorPropagates(t *testing.T) {
	src := newSource()
	src.err = errors.New("db down")
	az := New(src, true, 0)

	_, err := az.Can(context.Background(), actor("u-warehouse"), "", entity.PermRequestsCreate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

// bloqueante detiene la primera lectura de roles hasta que se cierra release.
type bloqueante struct {
	*fakeSource
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *bloqueante) ListRoles(ctx context.Context, tenantID string) ([]*entity.RbacRole, error) {
	roles, err := b.fakeSource.ListRoles(ctx, tenantID)
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return roles, err
}

func TestInvalidate_DuranteUnaConstruccionNoCacheaPoliticasViejas(t *testing.T) {
	src := &bloqueante{fakeSource: newSource(), entered: make(chan struct{}), release: make(chan struct{})}
	az := New(src, true, 0)
	ctx := context.Background()

	done := make(chan bool)
	go func() {
		ok, _ := az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
		done <- ok
	}()

	<-src.entered
	src.roles = append(src.roles, &entity.RbacRole{ID: "r-support", Permissions: []string{"tickets:manage"}})
	src.assignments = append(src.assignments, &entity.RbacAssignment{UserID: "u-new", RoleID: "r-support"})
	az.Invalidate("t1")
	close(src.release)
	assert.False(t, <-done, "la consulta en curso usa las políticas que leyó")

	ok, err := az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, src.loads)
}

func TestCan_EnforcerCacheadoVencePorTTL(t *testing.T) {
	src := newSource()
	az := New(src, true, time.Minute)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	az.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.False(t, ok)

	// cambio hecho por otra instancia: aquí no llega Invalidate
	src.roles = append(src.roles, &entity.RbacRole{ID: "r-support", Permissions: []string{"tickets:manage"}})
	src.assignments = append(src.assignments, &entity.RbacAssignment{UserID: "u-new", RoleID: "r-support"})

	now = now.Add(59 * time.Second)
	ok, err = az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, src.loads)

	now = now.Add(2 * time.Second)
	ok, err = az.Can(ctx, actor("u-new"), "", entity.PermTicketsManage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, src.loads)
}
