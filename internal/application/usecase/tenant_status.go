package usecase

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// TenantStatusService verifica si un tenant puede operar (no suspendido).
type TenantStatusService struct {
	repo repository.TenantRepository
}

// NewTenantStatusService construye el servicio.
func NewTenantStatusService(repo repository.TenantRepository) *TenantStatusService {
	return &TenantStatusService{repo: repo}
}

// IsActive devuelve false si el tenant no existe o está suspendido.
func (s *TenantStatusService) IsActive(ctx context.Context, tenantID string) (bool, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return t != nil && t.Status == TenantStatusActive, nil
}
