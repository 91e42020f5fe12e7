// Package units implementa el seguimiento de unidades físicas: transiciones de
// estado con su movimiento de stock, ingreso por factura de proveedor y la
// sustitución de equipos entregados.
package units

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
)

// UseCase casos de uso de unidades.
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

// Transition cambia el estado de la unidad según la tabla de transiciones,
// con su movimiento y el bien patrimonial sincronizado en la misma transacción.
func (uc *UseCase) Transition(ctx context.Context, actor ports.Actor, unitID string, in dto.TransitionUnitRequest) (*dto.TransitionUnitResponse, error) {
	if !lifecycle.IsUnitStatus(in.To) {
		return nil, domain.ErrInvalidInput
	}
	unit, err := uc.repos.Units.GetByID(ctx, actor.TenantID, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	asset, err := uc.repos.Assets.GetByUnit(ctx, actor.TenantID, unit.ID)
	if err != nil {
		return nil, err
	}
	scope := ""
	if asset != nil {
		scope = asset.ServiceID
	}
	if err := ports.Require(ctx, uc.az, actor, scope, entity.PermUnitsTransition); err != nil {
		return nil, err
	}
	if in.AssigneeID != "" {
		u, err := uc.repos.Users.GetByID(ctx, actor.TenantID, in.AssigneeID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := uc.now()
	var res *inventory.UnitMoveResult
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		locked, err := r.Units.GetForUpdate(ctx, actor.TenantID, unitID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		res, err = inventory.MoveUnit(ctx, r, inventory.UnitMove{
			TenantID: actor.TenantID,
			ActorID:  actor.UserID,
			Unit:     locked,
			To:       in.To,
			AssignTo: in.AssigneeID,
			Reason:   in.Reason,
			At:       now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: "unit.transitioned", ResourceID: res.Unit.ID,
		Status: res.Unit.Status, ActorID: actor.UserID, At: now,
	})
	return &dto.TransitionUnitResponse{
		Unit:     mapper.Unit(res.Unit),
		Movement: mapper.Movement(res.Movement),
		Asset:    mapper.AssetPtr(res.Asset),
	}, nil
}

// Get obtiene una unidad por ID.
func (uc *UseCase) Get(ctx context.Context, actor ports.Actor, id string) (*dto.UnitResponse, error) {
	u, err := uc.repos.Units.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	out := mapper.Unit(u)
	return &out, nil
}

// GetByCode obtiene una unidad por su código escaneable.
func (uc *UseCase) GetByCode(ctx context.Context, actor ports.Actor, code string) (*dto.UnitResponse, error) {
	u, err := uc.repos.Units.GetByCode(ctx, actor.TenantID, code)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	out := mapper.Unit(u)
	return &out, nil
}

// List lista unidades con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor, f entity.UnitFilter) (*dto.UnitListResponse, error) {
	if f.Status != "" && !lifecycle.IsUnitStatus(f.Status) {
		return nil, domain.ErrInvalidInput
	}
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.Units.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		items = append(items, mapper.Unit(u))
	}
	return &dto.UnitListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// Movements libro de movimientos de una unidad.
func (uc *UseCase) Movements(ctx context.Context, actor ports.Actor, unitID string) ([]dto.MovementResponse, error) {
	if _, err := uc.Get(ctx, actor, unitID); err != nil {
		return nil, err
	}
	list, err := uc.repos.Movements.ListByUnit(ctx, actor.TenantID, unitID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, mapper.Movement(m))
	}
	return out, nil
}
