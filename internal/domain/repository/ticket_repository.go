package repository

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// TicketRepository puerto de persistencia de tickets y su hilo de mensajes.
type TicketRepository interface {
	Create(ctx context.Context, t *entity.Ticket) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Ticket, error)
	List(ctx context.Context, tenantID string, f entity.TicketFilter) ([]*entity.Ticket, error)
	// UpdateStatus cambio condicional; RESOLVED fija resolved_at y CLOSED fija closed_at.
	UpdateStatus(ctx context.Context, tenantID, id string, from []string, to string, at time.Time) error
	// MarkFirstResponse fija first_response_at si aún es NULL; devuelve false si ya estaba.
	MarkFirstResponse(ctx context.Context, tenantID, id string, at time.Time) (bool, error)
	// UpdateLevel escalamiento condicional desde el nivel from.
	UpdateLevel(ctx context.Context, tenantID, id, from, to string, at time.Time) error
	// LinkRequest devuelve domain.ErrDuplicate si el vínculo ya existe.
	LinkRequest(ctx context.Context, tenantID, ticketID, requestID string) error

	AddMessage(ctx context.Context, m *entity.TicketMessage) error
	ListMessages(ctx context.Context, tenantID, ticketID string) ([]*entity.TicketMessage, error)
}
