package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
	"github.com/jhoicas/municipal-ops-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func newAuth(f *memstore.Fixture) *AuthUseCase {
	r := f.Store.Repos()
	return NewAuthUseCase(r.Users, r.Tenants, JWTConfig{Secret: secret, ExpMinutes: 15, Issuer: "municipal-ops-test"})
}

func TestRegisterYLogin(t *testing.T) {
	f := memstore.NewFixture()
	uc := newAuth(f)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, f.Tenant.ID, dto.RegisterRequest{Email: " Tecnico@MPR.gov.co ", Password: "clave-segura-1"})
	require.NoError(t, err)
	assert.Equal(t, "tecnico@mpr.gov.co", user.Email)
	assert.Equal(t, entity.RoleStaff, user.Role, "rol por defecto")
	assert.Equal(t, "tecnico@mpr.gov.co", user.Name)

	_, err = uc.RegisterUser(ctx, f.Tenant.ID, dto.RegisterRequest{Email: "tecnico@mpr.gov.co", Password: "otra-clave-2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "TECNICO@mpr.gov.co", Password: "clave-segura-1", TenantCode: "mpr"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	id, err := jwt.Parse(secret, "municipal-ops-test", out.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: user.ID, TenantID: f.Tenant.ID, Role: entity.RoleStaff}, id)
}

func TestRegister_Errores(t *testing.T) {
	f := memstore.NewFixture()
	uc := newAuth(f)
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, f.Tenant.ID, dto.RegisterRequest{Email: "x@mpr.gov.co", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(ctx, f.Tenant.ID, dto.RegisterRequest{Email: "x@mpr.gov.co", Password: "clave-segura-1", Role: "alcalde"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rol fuera del enum")

	_, err = uc.RegisterUser(ctx, "tenant-inexistente", dto.RegisterRequest{Email: "x@mpr.gov.co", Password: "clave-segura-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_Errores(t *testing.T) {
	f := memstore.NewFixture()
	uc := newAuth(f)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, f.Tenant.ID, dto.RegisterRequest{Email: "jefe@mpr.gov.co", Password: "clave-segura-1", Role: entity.RoleWarehouse})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "jefe@mpr.gov.co", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@mpr.gov.co", Password: "clave-segura-1"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "jefe@mpr.gov.co", Password: "clave-segura-1", TenantCode: "OTRO"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
