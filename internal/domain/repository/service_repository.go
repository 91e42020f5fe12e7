package repository

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// ServiceRepository puerto de persistencia para las dependencias municipales.
type ServiceRepository interface {
	// Upsert crea o actualiza por (tenant, code); lo usa la importación de catálogos.
	Upsert(ctx context.Context, svc *entity.MunicipalService) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.MunicipalService, error)
	List(ctx context.Context, tenantID string) ([]*entity.MunicipalService, error)
}
