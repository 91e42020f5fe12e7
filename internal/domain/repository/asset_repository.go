package repository

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// AssetRepository puerto de persistencia de bienes patrimoniales y su historial.
type AssetRepository interface {
	Create(ctx context.Context, a *entity.MunicipalAsset) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.MunicipalAsset, error)
	GetByUnit(ctx context.Context, tenantID, unitID string) (*entity.MunicipalAsset, error)
	List(ctx context.Context, tenantID string, f entity.AssetFilter) ([]*entity.MunicipalAsset, error)
	// UpdateStatus cambio condicional de estado; domain.ErrConflict si no afecta una fila.
	UpdateStatus(ctx context.Context, tenantID, id string, from []string, to string, at time.Time) error
	// UpdatePlacement guarda dependencia, ubicación y custodio; falla con ErrConflict si el bien está dado de baja.
	UpdatePlacement(ctx context.Context, a *entity.MunicipalAsset) error

	AppendEvent(ctx context.Context, ev *entity.MunicipalAssetEvent) error
	AppendMovement(ctx context.Context, mv *entity.MunicipalAssetMovement) error
	ListEvents(ctx context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetEvent, error)
	ListMovements(ctx context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetMovement, error)
}
