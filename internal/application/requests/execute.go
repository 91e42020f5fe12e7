package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// Límites de la clave de idempotencia (header Idempotency-Key).
const (
	MinIdempotencyKeyLen = 8
	MaxIdempotencyKeyLen = 128
)

// Execute entrega en almacén una requisición APPROVED con firma de retiro y la deja
// FULFILLED. La clave de idempotencia hace que un reintento devuelva la misma
// respuesta sin repetir efectos; replayed indica que la respuesta es la guardada.
func (uc *UseCase) Execute(ctx context.Context, actor ports.Actor, id, key string, in dto.ExecuteRequestRequest) (resp *dto.ExecuteResponse, replayed bool, err error) {
	key = strings.TrimSpace(key)
	if len(key) < MinIdempotencyKeyLen || len(key) > MaxIdempotencyKeyLen {
		return nil, false, domain.ErrInvalidInput
	}

	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, false, err
	}
	// la respuesta guardada solo se entrega a quien puede ejecutar
	if err := ports.Require(ctx, uc.az, actor, req.ServiceID, entity.PermRequestsExecute); err != nil {
		return nil, false, err
	}
	if resp, ok, err := uc.replayStored(ctx, actor.TenantID, key, id); ok || err != nil {
		return resp, ok && err == nil, err
	}
	if req.Status != entity.RequestStatusApproved || req.Pickup == nil {
		return nil, false, domain.ErrConflict
	}
	svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, req.ServiceID)
	if err != nil {
		return nil, false, err
	}
	placement := inventory.Placement{ServiceID: req.ServiceID, CustodianID: req.RequesterID}
	if svc != nil {
		placement.Location = svc.Location
	}
	products := make(map[string]*entity.Product, len(req.Items))
	for _, it := range req.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := uc.repos.Products.GetByID(ctx, actor.TenantID, it.ProductID)
		if err != nil {
			return nil, false, err
		}
		if p == nil {
			return nil, false, domain.ErrNotFound
		}
		products[it.ProductID] = p
	}

	// primero las líneas con código de destino, para que la selección automática no las tome
	ordered := make([]entity.RequestItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.DestinationCode != "" {
			ordered = append(ordered, it)
		}
	}
	for _, it := range req.Items {
		if it.DestinationCode == "" {
			ordered = append(ordered, it)
		}
	}

	now := uc.now()
	var out *dto.ExecuteResponse
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		result := dto.ExecuteResponse{Movements: []dto.MovementResponse{}, Assets: []dto.AssetResponse{}}
		for _, it := range ordered {
			product := products[it.ProductID]
			switch {
			case it.DestinationCode != "":
				unit, err := r.Units.GetByCodeForUpdate(ctx, actor.TenantID, it.DestinationCode)
				if err != nil {
					return err
				}
				if unit == nil {
					return domain.ErrNotFound
				}
				if unit.ProductID != product.ID || unit.Status != entity.UnitStatusInStock {
					return domain.ErrConflict
				}
				if err := deliverUnit(ctx, r, actor, req, unit, placement, in.Notes, now, &result); err != nil {
					return err
				}
			case product.Serialized:
				n := int(it.Quantity.IntPart())
				units, err := r.Units.PickInStock(ctx, actor.TenantID, product.ID, n)
				if err != nil {
					return err
				}
				if len(units) < n {
					return domain.ErrInsufficientStock
				}
				for _, unit := range units {
					if err := deliverUnit(ctx, r, actor, req, unit, placement, in.Notes, now, &result); err != nil {
						return err
					}
				}
			default:
				mov, err := inventory.BulkOut(ctx, r, actor.TenantID, actor.UserID, product.ID, req.ID, it.Quantity, now)
				if err != nil {
					return err
				}
				result.Movements = append(result.Movements, mapper.Movement(mov))
			}
		}

		if err := r.Requests.Transition(ctx, actor.TenantID, req.ID, repository.RequestTransition{
			From:        []string{entity.RequestStatusApproved},
			To:          entity.RequestStatusFulfilled,
			At:          now,
			FulfilledBy: actor.UserID,
		}); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, uc.event(actor, req.ID, entity.RequestStatusApproved, entity.RequestStatusFulfilled, ActionExecute, strings.TrimSpace(in.Notes), now)); err != nil {
			return err
		}
		updated, err := r.Requests.GetByID(ctx, actor.TenantID, req.ID)
		if err != nil {
			return err
		}
		result.Request = mapper.Request(updated)

		body, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("serializar respuesta: %w", err)
		}
		if err := r.Idempotency.Create(ctx, &entity.IdempotencyKey{
			Key:        key,
			TenantID:   actor.TenantID,
			Operation:  entity.IdempotencyOpExecuteRequest,
			ResourceID: req.ID,
			Response:   body,
			CreatedBy:  actor.UserID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		out = &result
		return nil
	})
	if err != nil {
		// otra ejecución con la misma clave pudo confirmar primero
		if resp, ok, rerr := uc.replayStored(ctx, actor.TenantID, key, id); ok {
			return resp, rerr == nil, rerr
		}
		return nil, false, err
	}
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: "request.fulfilled", ResourceID: req.ID,
		Status: entity.RequestStatusFulfilled, ActorID: actor.UserID, At: now,
	})
	return out, false, nil
}

func deliverUnit(ctx context.Context, r ports.Repos, actor ports.Actor, req *entity.Request, unit *entity.ProductUnit, p inventory.Placement, note string, now time.Time, result *dto.ExecuteResponse) error {
	res, err := inventory.MoveUnit(ctx, r, inventory.UnitMove{
		TenantID:  actor.TenantID,
		ActorID:   actor.UserID,
		Unit:      unit,
		To:        entity.UnitStatusAcquired,
		AssignTo:  req.RequesterID,
		RequestID: req.ID,
		Reason:    note,
		At:        now,
		Placement: &p,
	})
	if err != nil {
		return err
	}
	result.Movements = append(result.Movements, mapper.Movement(res.Movement))
	if res.Asset != nil {
		result.Assets = append(result.Assets, mapper.Asset(res.Asset))
	}
	return nil
}

// replayStored busca la clave guardada; ok indica que existía y la respuesta
// (o el error de reutilización) viene de ella.
func (uc *UseCase) replayStored(ctx context.Context, tenantID, key, requestID string) (*dto.ExecuteResponse, bool, error) {
	stored, err := uc.repos.Idempotency.Get(ctx, tenantID, key)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, nil
	}
	resp, err := replay(stored, requestID)
	return resp, true, err
}

// replay devuelve la respuesta guardada si la clave corresponde a la misma operación y requisición.
func replay(k *entity.IdempotencyKey, requestID string) (*dto.ExecuteResponse, error) {
	if k.Operation != entity.IdempotencyOpExecuteRequest || k.ResourceID != requestID {
		return nil, domain.ErrIdempotencyKeyReused
	}
	var resp dto.ExecuteResponse
	if err := json.Unmarshal(k.Response, &resp); err != nil {
		return nil, fmt.Errorf("respuesta idempotente corrupta: %w", err)
	}
	return &resp, nil
}
