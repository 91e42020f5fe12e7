// Package auth registra usuarios de un municipio y emite el token de sesión.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
	"github.com/jhoicas/municipal-ops-api/pkg/jwt"
)

// MinPasswordLen largo mínimo de contraseña.
const MinPasswordLen = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	jwtCfg     JWTConfig
	now        func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tenantRepo repository.TenantRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tenantRepo: tenantRepo, jwtCfg: jwtCfg, now: time.Now}
}

// RegisterUser crea un usuario activo en tenantID. Sin rol queda como staff.
// Devuelve ErrEmailAlreadyExists si el email ya existe en ese tenant.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, tenantID string, in dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := newUser(tenantID, in, uc.now())
	if err != nil {
		return nil, err
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.userRepo.GetByEmailAndTenant(ctx, user.Email, tenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return mapper.User(user), nil
}

// newUser normaliza la entrada; el hash se calcula después de las lecturas.
func newUser(tenantID string, in dto.RegisterRequest, now time.Time) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < MinPasswordLen {
		return nil, domain.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = entity.RoleStaff
	}
	if !entity.IsRole(role) {
		return nil, domain.ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	return &entity.User{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    entity.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Login verifica email y contraseña y emite el token. Con TenantCode el email se
// busca solo en ese municipio.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.findUser(ctx, strings.ToLower(strings.TrimSpace(in.Email)), strings.TrimSpace(in.TenantCode))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer,
		jwt.Identity{UserID: user.ID, TenantID: user.TenantID, Role: user.Role},
		time.Duration(uc.jwtCfg.ExpMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *mapper.User(user)}, nil
}

func (uc *AuthUseCase) findUser(ctx context.Context, email, tenantCode string) (*entity.User, error) {
	var (
		user *entity.User
		err  error
	)
	if tenantCode == "" {
		user, err = uc.userRepo.GetByEmail(ctx, email)
	} else {
		tenant, terr := uc.tenantRepo.GetByCode(ctx, strings.ToUpper(tenantCode))
		if terr != nil {
			return nil, terr
		}
		if tenant == nil {
			return nil, domain.ErrUserNotFound
		}
		user, err = uc.userRepo.GetByEmailAndTenant(ctx, email, tenant.ID)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
