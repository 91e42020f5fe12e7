package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// ServiceUseCase casos de uso para dependencias municipales.
type ServiceUseCase struct {
	repo repository.ServiceRepository
	az   ports.Authorizer
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(repo repository.ServiceRepository, az ports.Authorizer) *ServiceUseCase {
	return &ServiceUseCase{repo: repo, az: az}
}

// Create crea (o actualiza por código) una dependencia. Requiere catalog:manage.
func (uc *ServiceUseCase) Create(ctx context.Context, actor ports.Actor, in dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermCatalogManage); err != nil {
		return nil, err
	}
	return uc.Import(ctx, actor.TenantID, in)
}

// Import alta sin verificación de permisos; la usa la carga masiva de catálogos.
func (uc *ServiceUseCase) Import(ctx context.Context, tenantID string, in dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	svc := &entity.MunicipalService{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		Location:  strings.TrimSpace(in.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if svc.Location == "" {
		svc.Location = name
	}
	if err := uc.repo.Upsert(ctx, svc); err != nil {
		return nil, err
	}
	return toServiceResponse(svc), nil
}

// GetByID obtiene una dependencia por ID.
func (uc *ServiceUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ServiceResponse, error) {
	svc, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	return toServiceResponse(svc), nil
}

// List lista las dependencias del tenant.
func (uc *ServiceUseCase) List(ctx context.Context, tenantID string) (*dto.ServiceListResponse, error) {
	list, err := uc.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ServiceResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toServiceResponse(s))
	}
	return &dto.ServiceListResponse{Items: items}, nil
}

func toServiceResponse(s *entity.MunicipalService) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:        s.ID,
		TenantID:  s.TenantID,
		Code:      s.Code,
		Name:      s.Name,
		Location:  s.Location,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
