// Package tickets implementa la mesa de ayuda: tickets con plazos de SLA por
// prioridad, hilo de mensajes, escalamiento por niveles y vínculo con requisiciones.
package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
)

const sequenceKind = "ticket"

// UseCase casos de uso de tickets.
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

// Create abre un ticket en OPEN/L1 con los plazos de SLA de su prioridad.
func (uc *UseCase) Create(ctx context.Context, actor ports.Actor, in dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	policy, ok := lifecycle.SLAFor(in.Priority)
	if !ok || strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ServiceID != "" {
		svc, err := uc.repos.Services.GetByID(ctx, actor.TenantID, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, domain.ErrNotFound
		}
	}
	if in.AssigneeID != "" {
		if err := ports.Require(ctx, uc.az, actor, in.ServiceID, entity.PermTicketsManage); err != nil {
			return nil, err
		}
		u, err := uc.repos.Users.GetByID(ctx, actor.TenantID, in.AssigneeID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrNotFound
		}
	}
	now := uc.now()
	t := &entity.Ticket{
		ID:              uuid.New().String(),
		TenantID:        actor.TenantID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Status:          entity.TicketStatusOpen,
		Priority:        in.Priority,
		Level:           entity.TicketLevel1,
		ServiceID:       in.ServiceID,
		CreatedBy:       actor.UserID,
		AssigneeID:      in.AssigneeID,
		ResponseDueAt:   now.Add(policy.Response),
		ResolutionDueAt: now.Add(policy.Resolution),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		seq, err := r.Sequences.Next(ctx, actor.TenantID, sequenceKind)
		if err != nil {
			return err
		}
		t.Number = FormatNumber(seq)
		return r.Tickets.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "ticket.created", t, now)
	out := toResponse(t, now)
	return &out, nil
}

// AddMessage agrega un mensaje al hilo. La primera respuesta de alguien distinto
// al creador fija first_response_at y pasa el ticket de OPEN a IN_PROGRESS.
func (uc *UseCase) AddMessage(ctx context.Context, actor ports.Actor, id string, in dto.AddMessageRequest) (*dto.TicketMessageResponse, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == entity.TicketStatusClosed {
		return nil, domain.ErrConflict
	}
	if actor.UserID != t.CreatedBy && actor.UserID != t.AssigneeID {
		if err := ports.Require(ctx, uc.az, actor, t.ServiceID, entity.PermTicketsManage); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	msg := &entity.TicketMessage{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		TicketID:  t.ID,
		AuthorID:  actor.UserID,
		Body:      body,
		CreatedAt: now,
	}
	started := false
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Tickets.AddMessage(ctx, msg); err != nil {
			return err
		}
		if actor.UserID == t.CreatedBy {
			return nil
		}
		first, err := r.Tickets.MarkFirstResponse(ctx, actor.TenantID, t.ID, now)
		if err != nil {
			return err
		}
		if !first || t.Status != entity.TicketStatusOpen {
			return nil
		}
		if err := r.Tickets.UpdateStatus(ctx, actor.TenantID, t.ID, []string{entity.TicketStatusOpen}, entity.TicketStatusInProgress, now); err != nil {
			return err
		}
		started = true
		return r.Tickets.AddMessage(ctx, systemMessage(actor, t.ID, statusNote(entity.TicketStatusOpen, entity.TicketStatusInProgress, ""), now))
	})
	if err != nil {
		return nil, err
	}
	if started {
		t.Status = entity.TicketStatusInProgress
		uc.publish(actor, "ticket.in_progress", t, now)
	}
	out := messageResponse(msg)
	return &out, nil
}

// ChangeStatus aplica una transición legal; el mensaje de sistema es la fila de auditoría.
func (uc *UseCase) ChangeStatus(ctx context.Context, actor ports.Actor, id string, in dto.ChangeTicketStatusRequest) (*dto.TicketResponse, error) {
	t, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanTransitionTicket(t.Status, in.To) {
		return nil, domain.ErrConflict
	}
	from := t.Status
	now := uc.now()
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Tickets.UpdateStatus(ctx, actor.TenantID, t.ID, []string{from}, in.To, now); err != nil {
			return err
		}
		if err := r.Tickets.AddMessage(ctx, systemMessage(actor, t.ID, statusNote(from, in.To, in.Note), now)); err != nil {
			return err
		}
		t, err = r.Tickets.GetByID(ctx, actor.TenantID, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "ticket."+strings.ToLower(t.Status), t, now)
	out := toResponse(t, now)
	return &out, nil
}

// Escalate sube el ticket al siguiente nivel; ErrConflict si ya está en L3 o cerrado.
func (uc *UseCase) Escalate(ctx context.Context, actor ports.Actor, id string, in dto.EscalateTicketRequest) (*dto.TicketResponse, error) {
	t, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	next, ok := lifecycle.NextLevel(t.Level)
	if !ok || t.Status == entity.TicketStatusClosed {
		return nil, domain.ErrConflict
	}
	from := t.Level
	now := uc.now()
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Tickets.UpdateLevel(ctx, actor.TenantID, t.ID, from, next, now); err != nil {
			return err
		}
		note := fmt.Sprintf("Escalado %s -> %s", from, next)
		if n := strings.TrimSpace(in.Note); n != "" {
			note += ": " + n
		}
		if err := r.Tickets.AddMessage(ctx, systemMessage(actor, t.ID, note, now)); err != nil {
			return err
		}
		t, err = r.Tickets.GetByID(ctx, actor.TenantID, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(actor, "ticket.escalated", t, now)
	out := toResponse(t, now)
	return &out, nil
}

// LinkRequest vincula una requisición del mismo tenant al ticket.
func (uc *UseCase) LinkRequest(ctx context.Context, actor ports.Actor, id string, in dto.LinkRequestRequest) (*dto.TicketResponse, error) {
	t, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	req, err := uc.repos.Requests.GetByID(ctx, actor.TenantID, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Tickets.LinkRequest(ctx, actor.TenantID, t.ID, req.ID); err != nil {
			return err
		}
		if err := r.Tickets.AddMessage(ctx, systemMessage(actor, t.ID, "Requisición vinculada "+req.Number, now)); err != nil {
			return err
		}
		t, err = r.Tickets.GetByID(ctx, actor.TenantID, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toResponse(t, now)
	return &out, nil
}

// SLAState evalúa el cumplimiento de SLA del ticket en este instante.
func (uc *UseCase) SLAState(ctx context.Context, actor ports.Actor, id string) (*dto.SLAStateResponse, error) {
	t, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	out := slaResponse(t, uc.now())
	return &out, nil
}

// Get ticket con su hilo de mensajes.
func (uc *UseCase) Get(ctx context.Context, actor ports.Actor, id string) (*dto.TicketDetailResponse, error) {
	t, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.repos.Tickets.ListMessages(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	out := &dto.TicketDetailResponse{Ticket: toResponse(t, uc.now()), Messages: make([]dto.TicketMessageResponse, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, messageResponse(m))
	}
	return out, nil
}

// List lista tickets con filtros.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor, f entity.TicketFilter) (*dto.TicketListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.Tickets.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.TicketResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toResponse(t, now))
	}
	return &dto.TicketListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

func (uc *UseCase) authorize(ctx context.Context, actor ports.Actor, id string) (*entity.Ticket, error) {
	t, err := uc.load(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ports.Require(ctx, uc.az, actor, t.ServiceID, entity.PermTicketsManage); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *UseCase) load(ctx context.Context, tenantID, id string) (*entity.Ticket, error) {
	t, err := uc.repos.Tickets.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (uc *UseCase) publish(actor ports.Actor, typ string, t *entity.Ticket, at time.Time) {
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: typ, ResourceID: t.ID,
		Status: t.Status, ActorID: actor.UserID, At: at,
	})
}

// FormatNumber número visible del ticket.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("TCK-%06d", seq)
}

func statusNote(from, to, note string) string {
	s := fmt.Sprintf("Estado %s -> %s", from, to)
	if n := strings.TrimSpace(note); n != "" {
		s += ": " + n
	}
	return s
}

func systemMessage(actor ports.Actor, ticketID, body string, at time.Time) *entity.TicketMessage {
	return &entity.TicketMessage{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		TicketID:  ticketID,
		AuthorID:  actor.UserID,
		Body:      body,
		IsSystem:  true,
		CreatedAt: at,
	}
}

func toResponse(t *entity.Ticket, now time.Time) dto.TicketResponse {
	ids := t.RequestIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.TicketResponse{
		ID:          t.ID,
		Number:      t.Number,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Level:       t.Level,
		ServiceID:   t.ServiceID,
		CreatedBy:   t.CreatedBy,
		AssigneeID:  t.AssigneeID,
		RequestIDs:  ids,
		SLA:         slaResponse(t, now),
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func slaResponse(t *entity.Ticket, now time.Time) dto.SLAStateResponse {
	s := lifecycle.EvaluateSLA(t, now)
	return dto.SLAStateResponse{
		ResponseDueAt:      t.ResponseDueAt,
		ResolutionDueAt:    t.ResolutionDueAt,
		FirstResponseAt:    t.FirstResponseAt,
		ResolvedAt:         t.ResolvedAt,
		ResponseBreached:   s.ResponseBreached,
		ResolutionBreached: s.ResolutionBreached,
		EvaluatedAt:        now,
	}
}

func messageResponse(m *entity.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{ID: m.ID, AuthorID: m.AuthorID, Body: m.Body, IsSystem: m.IsSystem, CreatedAt: m.CreatedAt}
}
