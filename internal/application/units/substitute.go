package units

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/application/requests"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
	"github.com/shopspring/decimal"
)

// ActionSubstitute acción de bitácora de la requisición de devolución generada.
const ActionSubstitute = "substitute"

// Substitute reemplaza un equipo entregado (ACQUIRED) por otro del almacén (IN_STOCK)
// en una sola transacción: genera la requisición RETURN ya cumplida, retira la unidad
// vieja a retireTo y entrega la nueva al mismo tenedor, heredando ubicación y custodio.
func (uc *UseCase) Substitute(ctx context.Context, actor ports.Actor, in dto.SubstituteRequest) (*dto.SubstituteResponse, error) {
	oldCode := strings.TrimSpace(in.OldCode)
	newCode := strings.TrimSpace(in.NewCode)
	if oldCode == "" || newCode == "" || oldCode == newCode || !lifecycle.IsRetireTarget(in.RetireTo) {
		return nil, domain.ErrInvalidInput
	}
	oldUnit, err := uc.repos.Units.GetByCode(ctx, actor.TenantID, oldCode)
	if err != nil {
		return nil, err
	}
	if oldUnit == nil {
		return nil, domain.ErrNotFound
	}
	oldAsset, err := uc.repos.Assets.GetByUnit(ctx, actor.TenantID, oldUnit.ID)
	if err != nil {
		return nil, err
	}
	serviceID := in.ServiceID
	if serviceID == "" && oldAsset != nil {
		serviceID = oldAsset.ServiceID
	}
	if serviceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ports.Require(ctx, uc.az, actor, serviceID, entity.PermUnitsSubstitute); err != nil {
		return nil, err
	}
	svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.repos.Users.GetByID(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	now := uc.now()
	reason := strings.TrimSpace(in.Reason)
	var (
		ret    *entity.Request
		oldRes *inventory.UnitMoveResult
		newRes *inventory.UnitMoveResult
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		old, err := r.Units.GetByCodeForUpdate(ctx, actor.TenantID, oldCode)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrNotFound
		}
		if old.Status != entity.UnitStatusAcquired {
			return domain.ErrConflict
		}
		nu, err := r.Units.GetByCodeForUpdate(ctx, actor.TenantID, newCode)
		if err != nil {
			return err
		}
		if nu == nil {
			return domain.ErrNotFound
		}
		if nu.Status != entity.UnitStatusInStock {
			return domain.ErrConflict
		}
		holder := old.AssignedTo

		placement := inventory.Placement{ServiceID: serviceID, Location: svc.Location, CustodianID: holder}
		asset, err := r.Assets.GetByUnit(ctx, actor.TenantID, old.ID)
		if err != nil {
			return err
		}
		if asset != nil {
			placement.Location = asset.Location
			if asset.CustodianID != "" {
				placement.CustodianID = asset.CustodianID
			}
			if in.ServiceID == "" {
				placement.ServiceID = asset.ServiceID
			}
		}

		seq, err := r.Sequences.Next(ctx, actor.TenantID, "request")
		if err != nil {
			return err
		}
		ret = &entity.Request{
			ID:             uuid.New().String(),
			TenantID:       actor.TenantID,
			Number:         requests.FormatNumber(entity.RequestTypeReturn, seq),
			Type:           entity.RequestTypeReturn,
			Status:         entity.RequestStatusFulfilled,
			ServiceID:      serviceID,
			RequesterID:    user.ID,
			RequesterName:  user.Name,
			RequesterEmail: user.Email,
			Notes:          reason,
			SubmittedAt:    &now,
			DecidedAt:      &now,
			FulfilledAt:    &now,
			FulfilledBy:    actor.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		one := decimal.NewFromInt(1)
		ret.Items = []entity.RequestItem{
			{ID: uuid.New().String(), RequestID: ret.ID, ProductID: old.ProductID, Quantity: one, DestinationCode: old.Code, Role: entity.ItemRoleOld},
			{ID: uuid.New().String(), RequestID: ret.ID, ProductID: nu.ProductID, Quantity: one, DestinationCode: nu.Code, Role: entity.ItemRoleNew},
		}
		if err := r.Requests.Create(ctx, ret); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, &entity.RequestEvent{
			ID:        uuid.New().String(),
			TenantID:  actor.TenantID,
			RequestID: ret.ID,
			ToStatus:  entity.RequestStatusFulfilled,
			Action:    ActionSubstitute,
			ActorID:   actor.UserID,
			Note:      reason,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		oldRes, err = inventory.MoveUnit(ctx, r, inventory.UnitMove{
			TenantID:      actor.TenantID,
			ActorID:       actor.UserID,
			Unit:          old,
			To:            in.RetireTo,
			RequestID:     ret.ID,
			Reason:        reason,
			At:            now,
			ReleaseHolder: true,
		})
		if err != nil {
			return err
		}
		newRes, err = inventory.MoveUnit(ctx, r, inventory.UnitMove{
			TenantID:  actor.TenantID,
			ActorID:   actor.UserID,
			Unit:      nu,
			To:        entity.UnitStatusAcquired,
			AssignTo:  holder,
			RequestID: ret.ID,
			Reason:    reason,
			At:        now,
			Placement: &placement,
		})
		if err != nil {
			return err
		}
		ret, err = r.Requests.GetByID(ctx, actor.TenantID, ret.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: "unit.substituted", ResourceID: ret.ID,
		Status: ret.Status, ActorID: actor.UserID, At: now,
	})
	return &dto.SubstituteResponse{
		ReturnRequest: mapper.Request(ret),
		OldUnit:       mapper.Unit(oldRes.Unit),
		NewUnit:       mapper.Unit(newRes.Unit),
		Asset:         mapper.AssetPtr(newRes.Asset),
	}, nil
}
