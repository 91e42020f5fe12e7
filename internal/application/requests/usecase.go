// Package requests implementa el ciclo de vida de las requisiciones:
// borrador, envío, aprobación o rechazo con firma, bloqueo y firma de retiro,
// y la ejecución en almacén con clave de idempotencia.
package requests

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// Acciones registradas en la bitácora.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionSubmit     = "submit"
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionCancel     = "cancel"
	ActionPickupLock = "pickup_lock"
	ActionPickupSign = "pickup_sign"
	ActionExecute    = "execute"
)

const defaultPickupLockTTL = 10 * time.Minute

// Config parámetros del caso de uso.
type Config struct {
	PickupLockTTL time.Duration
}

// UseCase casos de uso de requisiciones.
type UseCase struct {
	repos    ports.Repos
	tx       ports.TxRunner
	az       ports.Authorizer
	notifier ports.Notifier
	cfg      Config
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repos ports.Repos, tx ports.TxRunner, az ports.Authorizer, notifier ports.Notifier, cfg Config) *UseCase {
	if cfg.PickupLockTTL <= 0 {
		cfg.PickupLockTTL = defaultPickupLockTTL
	}
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &UseCase{repos: repos, tx: tx, az: az, notifier: notifier, cfg: cfg, now: time.Now}
}

// Create crea una requisición en DRAFT con snapshot de nombre y email del solicitante.
func (uc *UseCase) Create(ctx context.Context, actor ports.Actor, in dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, in.ServiceID, entity.PermRequestsCreate); err != nil {
		return nil, err
	}
	svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, in.ServiceID)
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
	req := &entity.Request{
		ID:             uuid.New().String(),
		TenantID:       actor.TenantID,
		Type:           entity.RequestTypeSupply,
		Status:         entity.RequestStatusDraft,
		ServiceID:      svc.ID,
		RequesterID:    user.ID,
		RequesterName:  user.Name,
		RequesterEmail: user.Email,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	items, err := uc.buildItems(ctx, actor.TenantID, req.ID, in.Items)
	if err != nil {
		return nil, err
	}
	req.Items = items

	var out *entity.Request
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		seq, err := r.Sequences.Next(ctx, actor.TenantID, "request")
		if err != nil {
			return err
		}
		req.Number = FormatNumber(entity.RequestTypeSupply, seq)
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, uc.event(actor, req.ID, "", entity.RequestStatusDraft, ActionCreate, "", now)); err != nil {
			return err
		}
		out, err = r.Requests.GetByID(ctx, actor.TenantID, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "request.created", out)
	resp := mapper.Request(out)
	return &resp, nil
}

// UpdateDraft reemplaza notas y líneas. Solo el solicitante y solo en DRAFT.
func (uc *UseCase) UpdateDraft(ctx context.Context, actor ports.Actor, id string, in dto.UpdateDraftRequest) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if req.Status != entity.RequestStatusDraft {
		return nil, domain.ErrConflict
	}
	items, err := uc.buildItems(ctx, actor.TenantID, req.ID, in.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	req.Notes = strings.TrimSpace(in.Notes)
	req.Items = items
	req.UpdatedAt = now

	var out *entity.Request
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Requests.UpdateDraft(ctx, req); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, uc.event(actor, req.ID, entity.RequestStatusDraft, entity.RequestStatusDraft, ActionUpdate, "", now)); err != nil {
			return err
		}
		out, err = r.Requests.GetByID(ctx, actor.TenantID, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "request.updated", out)
	resp := mapper.Request(out)
	return &resp, nil
}

// Submit DRAFT → SUBMITTED. Requiere al menos una línea.
func (uc *UseCase) Submit(ctx context.Context, actor ports.Actor, id string) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, actor, req, repository.RequestTransition{To: entity.RequestStatusSubmitted}, ActionSubmit, "")
}

// Approve SUBMITTED → APPROVED con la firma del aprobador.
func (uc *UseCase) Approve(ctx context.Context, actor ports.Actor, id string, in dto.SignatureInput) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, req.ServiceID, entity.PermRequestsApprove); err != nil {
		return nil, err
	}
	sig, err := uc.signature(actor, in)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, actor, req, repository.RequestTransition{To: entity.RequestStatusApproved, Approval: sig}, ActionApprove, "")
}

// Reject SUBMITTED → REJECTED; el motivo es obligatorio.
func (uc *UseCase) Reject(ctx context.Context, actor ports.Actor, id, reason string) (*dto.RequestResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, req.ServiceID, entity.PermRequestsApprove); err != nil {
		return nil, err
	}
	return uc.transition(ctx, actor, req, repository.RequestTransition{To: entity.RequestStatusRejected, RejectionReason: reason}, ActionReject, reason)
}

// Cancel DRAFT|SUBMITTED → CANCELLED, solo el solicitante.
func (uc *UseCase) Cancel(ctx context.Context, actor ports.Actor, id, reason string) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return uc.transition(ctx, actor, req, repository.RequestTransition{To: entity.RequestStatusCancelled}, ActionCancel, strings.TrimSpace(reason))
}

// LockForPickup toma el bloqueo de firma de retiro por el TTL configurado.
// Renovarlo es posible para quien ya lo tiene; otro usuario recibe ErrSignatureLockHeld.
func (uc *UseCase) LockForPickup(ctx context.Context, actor ports.Actor, id string) (*dto.PickupLockResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, req.ServiceID, entity.PermRequestsExecute); err != nil {
		return nil, err
	}
	if req.Status != entity.RequestStatusApproved || req.Pickup != nil {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	if req.PickupLockBy != "" && req.PickupLockBy != actor.UserID && req.PickupLockUntil != nil && now.Before(*req.PickupLockUntil) {
		return nil, domain.ErrSignatureLockHeld
	}
	until := now.Add(uc.cfg.PickupLockTTL)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Requests.AcquirePickupLock(ctx, actor.TenantID, req.ID, actor.UserID, until, now); err != nil {
			return err
		}
		return r.RequestEvents.Append(ctx, uc.event(actor, req.ID, req.Status, req.Status, ActionPickupLock, "", now))
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: "request.pickup_locked", ResourceID: req.ID,
		Status: req.Status, ActorID: actor.UserID, At: now,
	})
	return &dto.PickupLockResponse{RequestID: req.ID, LockedBy: actor.UserID, LockedUntil: until}, nil
}

// SignPickup registra la firma de retiro. Exige el bloqueo vigente del firmante.
func (uc *UseCase) SignPickup(ctx context.Context, actor ports.Actor, id string, in dto.SignatureInput) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, req.ServiceID, entity.PermRequestsExecute); err != nil {
		return nil, err
	}
	if req.Status != entity.RequestStatusApproved || req.Pickup != nil {
		return nil, domain.ErrConflict
	}
	sig, err := uc.signature(actor, in)
	if err != nil {
		return nil, err
	}
	if !req.HasPickupLock(actor.UserID, sig.SignedAt) {
		return nil, domain.ErrSignatureLockExpired
	}
	var out *entity.Request
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Requests.RecordPickup(ctx, actor.TenantID, req.ID, *sig); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, uc.event(actor, req.ID, req.Status, req.Status, ActionPickupSign, sig.Name, sig.SignedAt)); err != nil {
			return err
		}
		out, err = r.Requests.GetByID(ctx, actor.TenantID, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "request.pickup_signed", out)
	resp := mapper.Request(out)
	return &resp, nil
}

// Get obtiene una requisición con sus líneas.
func (uc *UseCase) Get(ctx context.Context, actor ports.Actor, id string) (*dto.RequestResponse, error) {
	req, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := mapper.Request(req)
	return &resp, nil
}

// List lista requisiciones del tenant con filtros y paginación.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor, f entity.RequestFilter) (*dto.RequestListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.Requests.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, mapper.Request(r))
	}
	return &dto.RequestListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// Events devuelve la bitácora de la requisición en orden cronológico.
func (uc *UseCase) Events(ctx context.Context, actor ports.Actor, id string) ([]dto.RequestEventResponse, error) {
	if _, err := uc.load(ctx, actor, id); err != nil {
		return nil, err
	}
	list, err := uc.repos.RequestEvents.ListByRequest(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RequestEventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, mapper.RequestEvent(e))
	}
	return out, nil
}

// transition aplica una transición condicional con su fila de bitácora en la misma tx.
func (uc *UseCase) transition(ctx context.Context, actor ports.Actor, req *entity.Request, t repository.RequestTransition, action, note string) (*dto.RequestResponse, error) {
	if !lifecycle.CanTransitionRequest(req.Status, t.To) {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	t.From = []string{req.Status}
	t.At = now
	var out *entity.Request
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Requests.Transition(ctx, actor.TenantID, req.ID, t); err != nil {
			return err
		}
		if err := r.RequestEvents.Append(ctx, uc.event(actor, req.ID, req.Status, t.To, action, note, now)); err != nil {
			return err
		}
		var err error
		out, err = r.Requests.GetByID(ctx, actor.TenantID, req.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "request."+strings.ToLower(t.To), out)
	resp := mapper.Request(out)
	return &resp, nil
}

func (uc *UseCase) load(ctx context.Context, actor ports.Actor, id string) (*entity.Request, error) {
	req, err := uc.repos.Requests.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// buildItems valida las líneas: cantidad positiva, producto del tenant; en productos
// serializados la cantidad es entera y un código de destino implica cantidad 1.
func (uc *UseCase) buildItems(ctx context.Context, tenantID, requestID string, in []dto.RequestItemInput) ([]entity.RequestItem, error) {
	items := make([]entity.RequestItem, 0, len(in))
	for _, it := range in {
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.repos.Products.GetByID(ctx, tenantID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		code := strings.TrimSpace(it.DestinationCode)
		if product.Serialized && !it.Quantity.Equal(it.Quantity.Truncate(0)) {
			return nil, domain.ErrInvalidInput
		}
		if code != "" && (!product.Serialized || !it.Quantity.Equal(decimal.NewFromInt(1))) {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, entity.RequestItem{
			ID:              uuid.New().String(),
			RequestID:       requestID,
			ProductID:       product.ID,
			Quantity:        it.Quantity,
			DestinationCode: code,
			Role:            entity.ItemRoleNormal,
		})
	}
	return items, nil
}

func (uc *UseCase) signature(actor ports.Actor, in dto.SignatureInput) (*entity.Signature, error) {
	name := strings.TrimSpace(in.SignerName)
	if name == "" || strings.TrimSpace(in.Signature) == "" {
		return nil, domain.ErrInvalidInput
	}
	return &entity.Signature{
		UserID:   actor.UserID,
		Name:     name,
		Hash:     HashSignature(in.Signature),
		SignedAt: uc.now(),
	}, nil
}

func (uc *UseCase) event(actor ports.Actor, requestID, from, to, action, note string, at time.Time) *entity.RequestEvent {
	return &entity.RequestEvent{
		ID:         uuid.New().String(),
		TenantID:   actor.TenantID,
		RequestID:  requestID,
		FromStatus: from,
		ToStatus:   to,
		Action:     action,
		ActorID:    actor.UserID,
		Note:       note,
		CreatedAt:  at,
	}
}

func (uc *UseCase) publish(actor ports.Actor, typ string, r *entity.Request) {
	if r == nil {
		return
	}
	uc.notifier.Publish(ports.Event{
		TenantID:   actor.TenantID,
		Type:       typ,
		ResourceID: r.ID,
		Status:     r.Status,
		ActorID:    actor.UserID,
		At:         r.UpdatedAt,
	})
}

// HashSignature huella SHA-256 (hex) del trazo enviado por el cliente.
func HashSignature(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FormatNumber numeración visible: REQ-000123 para suministro, DEV-000123 para devoluciones.
func FormatNumber(reqType string, seq int64) string {
	prefix := "REQ"
	if reqType == entity.RequestTypeReturn {
		prefix = "DEV"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
