package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

const ticketColumns = `t.id, t.tenant_id, t.number, t.title, t.description, t.status, t.priority, t.level,
	t.service_id, t.created_by, t.assignee_id, t.response_due_at, t.resolution_due_at,
	t.first_response_at, t.resolved_at, t.closed_at, t.created_at, t.updated_at,
	COALESCE((SELECT array_agg(tr.request_id::text ORDER BY tr.created_at) FROM ticket_requests tr WHERE tr.ticket_id = t.id), '{}')`

// TicketRepo implementación de TicketRepository sobre PostgreSQL.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// Create inserta el ticket.
func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, tenant_id, number, title, description, status, priority, level,
			service_id, created_by, assignee_id, response_due_at, resolution_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query, t.ID, t.TenantID, t.Number, t.Title, t.Description, t.Status, t.Priority, t.Level,
		nullable(t.ServiceID), t.CreatedBy, nullable(t.AssigneeID), t.ResponseDueAt, t.ResolutionDueAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByID obtiene un ticket con sus requisiciones vinculadas.
func (r *TicketRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.tenant_id = $1 AND t.id = $2`
	t, err := scanTicket(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// List lista tickets con filtros; los más recientes primero.
func (r *TicketRepo) List(ctx context.Context, tenantID string, f entity.TicketFilter) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + ` FROM tickets t
		WHERE t.tenant_id = $1
		  AND ($2 = '' OR t.status = $2)
		  AND ($3 = '' OR t.priority = $3)
		  AND ($4 = '' OR t.assignee_id::text = $4)
		ORDER BY t.created_at DESC, t.id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, f.Status, f.Priority, f.AssigneeID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateStatus cambio condicional; RESOLVED fija resolved_at y CLOSED fija closed_at.
// Reabrir (RESOLVED -> IN_PROGRESS) limpia resolved_at.
func (r *TicketRepo) UpdateStatus(ctx context.Context, tenantID, id string, from []string, to string, at time.Time) error {
	query := `
		UPDATE tickets SET
			status = $4,
			updated_at = $5,
			resolved_at = CASE WHEN $4 = 'RESOLVED' THEN $5
			                   WHEN $4 IN ('IN_PROGRESS', 'WAITING') THEN NULL
			                   ELSE resolved_at END,
			closed_at = CASE WHEN $4 = 'CLOSED' THEN $5 ELSE closed_at END
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)`
	tag, err := r.q.Exec(ctx, query, tenantID, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// MarkFirstResponse fija first_response_at si aún es NULL.
func (r *TicketRepo) MarkFirstResponse(ctx context.Context, tenantID, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE tickets SET first_response_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2 AND first_response_at IS NULL`, tenantID, id, at)
	if err != nil {
		return false, fmt.Errorf("mark first response: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateLevel escalamiento condicional desde from.
func (r *TicketRepo) UpdateLevel(ctx context.Context, tenantID, id, from, to string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tickets SET level = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2 AND level = $3`, tenantID, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update ticket level: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// LinkRequest vincula una requisición; domain.ErrDuplicate si ya estaba.
func (r *TicketRepo) LinkRequest(ctx context.Context, tenantID, ticketID, requestID string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ticket_requests (tenant_id, ticket_id, request_id, created_at)
		VALUES ($1, $2, $3, now())`, tenantID, ticketID, requestID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("link ticket request: %w", err)
	}
	return nil
}

// AddMessage inserta un mensaje en el hilo.
func (r *TicketRepo) AddMessage(ctx context.Context, m *entity.TicketMessage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ticket_messages (id, tenant_id, ticket_id, author_id, body, is_system, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.TenantID, m.TicketID, m.AuthorID, m.Body, m.IsSystem, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket message: %w", err)
	}
	return nil
}

// ListMessages hilo del ticket en orden cronológico.
func (r *TicketRepo) ListMessages(ctx context.Context, tenantID, ticketID string) ([]*entity.TicketMessage, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, ticket_id, author_id, body, is_system, created_at
		FROM ticket_messages WHERE tenant_id = $1 AND ticket_id = $2
		ORDER BY created_at, id`, tenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.TicketMessage
	for rows.Next() {
		var m entity.TicketMessage
		if err := rows.Scan(&m.ID, &m.TenantID, &m.TicketID, &m.AuthorID, &m.Body, &m.IsSystem, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var (
		t                     entity.Ticket
		serviceID, assigneeID *string
	)
	err := row.Scan(&t.ID, &t.TenantID, &t.Number, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Level,
		&serviceID, &t.CreatedBy, &assigneeID, &t.ResponseDueAt, &t.ResolutionDueAt,
		&t.FirstResponseAt, &t.ResolvedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt, &t.RequestIDs)
	if err != nil {
		return nil, err
	}
	t.ServiceID, t.AssigneeID = deref(serviceID), deref(assigneeID)
	return &t, nil
}
