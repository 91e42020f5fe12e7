// Package assets gestiona el registro patrimonial: traslados, cambio de custodio,
// cambios manuales de estado e historial.
package assets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
)

// UseCase casos de uso de bienes patrimoniales.
type UseCase struct {
	repos    ports.Repos
	tx       ports.TxRunner
	az       ports.Authorizer
	notifier ports.Notifier
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, az ports.Authorizer, notifier ports.Notifier) *UseCase {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &UseCase{repos: repos, tx: tx, az: az, notifier: notifier, now: time.Now}
}

// Get obtiene un bien por ID.
func (uc *UseCase) Get(ctx context.Context, actor ports.Actor, id string) (*dto.AssetResponse, error) {
	a, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	out := mapper.Asset(a)
	return &out, nil
}

// List lista bienes con filtros.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor, f entity.AssetFilter) (*dto.AssetListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.Assets.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AssetResponse, 0, len(list))
	for _, a := range list {
		items = append(items, mapper.Asset(a))
	}
	return &dto.AssetListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// History devuelve el bien con sus eventos de estado y movimientos.
func (uc *UseCase) History(ctx context.Context, actor ports.Actor, id string) (*dto.AssetHistoryResponse, error) {
	a, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	events, err := uc.repos.Assets.ListEvents(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	moves, err := uc.repos.Assets.ListMovements(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	out := &dto.AssetHistoryResponse{
		Asset:     mapper.Asset(a),
		Events:    make([]dto.AssetEventResponse, 0, len(events)),
		Movements: make([]dto.AssetMovementResponse, 0, len(moves)),
	}
	for _, e := range events {
		out.Events = append(out.Events, dto.AssetEventResponse{
			ID: e.ID, Kind: e.Kind, FromStatus: e.FromStatus, ToStatus: e.ToStatus,
			RequestID: e.RequestID, ActorID: e.ActorID, Note: e.Note, CreatedAt: e.CreatedAt,
		})
	}
	for _, m := range moves {
		out.Movements = append(out.Movements, dto.AssetMovementResponse{
			ID: m.ID, Kind: m.Kind,
			FromLocation: m.FromLocation, ToLocation: m.ToLocation,
			FromServiceID: m.FromServiceID, ToServiceID: m.ToServiceID,
			FromCustodian: m.FromCustodian, ToCustodian: m.ToCustodian,
			ActorID: m.ActorID, Note: m.Note, CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// Move traslada el bien a otra ubicación y, si se indica, a otra dependencia.
func (uc *UseCase) Move(ctx context.Context, actor ports.Actor, id string, in dto.MoveAssetRequest) (*dto.AssetResponse, error) {
	loc := strings.TrimSpace(in.ToLocation)
	if loc == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ToServiceID != "" {
		svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, in.ToServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, domain.ErrNotFound
		}
	}
	return uc.relocate(ctx, actor, id, "asset.moved", func(a *entity.MunicipalAsset) inventory.Placement {
		p := inventory.Placement{ServiceID: a.ServiceID, Location: loc, CustodianID: a.CustodianID}
		if in.ToServiceID != "" {
			p.ServiceID = in.ToServiceID
		}
		return p
	}, in.Note)
}

// ChangeCustodian asigna otro custodio al bien.
func (uc *UseCase) ChangeCustodian(ctx context.Context, actor ports.Actor, id string, in dto.ChangeCustodianRequest) (*dto.AssetResponse, error) {
	u, err := uc.repos.Users.GetByID(ctx, actor.TenantID, in.CustodianID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return uc.relocate(ctx, actor, id, "asset.custodian_changed", func(a *entity.MunicipalAsset) inventory.Placement {
		return inventory.Placement{ServiceID: a.ServiceID, Location: a.Location, CustodianID: u.ID}
	}, in.Note)
}

// ChangeStatus cambio manual entre ACTIVE, IN_STORAGE y LOST.
func (uc *UseCase) ChangeStatus(ctx context.Context, actor ports.Actor, id string, in dto.ChangeAssetStatusRequest) (*dto.AssetResponse, error) {
	a, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanTransitionAsset(a.Status, in.To) {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Assets.UpdateStatus(ctx, actor.TenantID, a.ID, []string{a.Status}, in.To, now); err != nil {
			return err
		}
		if err := r.Assets.AppendEvent(ctx, &entity.MunicipalAssetEvent{
			ID:         uuid.New().String(),
			TenantID:   actor.TenantID,
			AssetID:    a.ID,
			Kind:       entity.AssetEventStatus,
			FromStatus: a.Status,
			ToStatus:   in.To,
			ActorID:    actor.UserID,
			Note:       strings.TrimSpace(in.Note),
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		a, err = r.Assets.GetByID(ctx, actor.TenantID, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "asset.status_changed", a, now)
	out := mapper.Asset(a)
	return &out, nil
}

func (uc *UseCase) relocate(ctx context.Context, actor ports.Actor, id, evType string, target func(*entity.MunicipalAsset) inventory.Placement, note string) (*dto.AssetResponse, error) {
	if _, err := uc.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	now := uc.now()
	var a *entity.MunicipalAsset
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		a, err = r.Assets.GetByID(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if lifecycle.IsAssetClosed(a.Status) {
			return domain.ErrConflict
		}
		return inventory.Relocate(ctx, r, actor.TenantID, actor.UserID, a, target(a), strings.TrimSpace(note), now)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, evType, a, now)
	out := mapper.Asset(a)
	return &out, nil
}

// authorize carga el bien, rechaza los dados de baja y exige assets:manage en su dependencia.
func (uc *UseCase) authorize(ctx context.Context, actor ports.Actor, id string) (*entity.MunicipalAsset, error) {
	a, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, a.ServiceID, entity.PermAssetsManage); err != nil {
		return nil, err
	}
	if lifecycle.IsAssetClosed(a.Status) {
		return nil, domain.ErrConflict
	}
	return a, nil
}

func (uc *UseCase) load(ctx context.Context, tenantID, id string) (*entity.MunicipalAsset, error) {
	a, err := uc.repos.Assets.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (uc *UseCase) publish(actor ports.Actor, typ string, a *entity.MunicipalAsset, at time.Time) {
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: typ, ResourceID: a.ID,
		Status: a.Status, ActorID: actor.UserID, At: at,
	})
}
