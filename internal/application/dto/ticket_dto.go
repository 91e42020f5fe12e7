package dto

import "time"

// CreateTicketRequest entrada para abrir un ticket.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	ServiceID   string `json:"service_id" validate:"omitempty,uuid"`
	AssigneeID  string `json:"assignee_id" validate:"omitempty,uuid"`
}

// AddMessageRequest mensaje en el hilo del ticket.
type AddMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// ChangeTicketStatusRequest cambio de estado con nota opcional.
type ChangeTicketStatusRequest struct {
	To   string `json:"to" validate:"required,oneof=OPEN IN_PROGRESS WAITING RESOLVED CLOSED"`
	Note string `json:"note" validate:"max=1000"`
}

// EscalateTicketRequest escalamiento al siguiente nivel.
type EscalateTicketRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

// LinkRequestRequest vincula una requisición al ticket.
type LinkRequestRequest struct {
	RequestID string `json:"request_id" validate:"required,uuid"`
}

// SLAStateResponse cumplimiento de SLA a la fecha de consulta.
type SLAStateResponse struct {
	ResponseDueAt      time.Time  `json:"response_due_at"`
	ResolutionDueAt    time.Time  `json:"resolution_due_at"`
	FirstResponseAt    *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	ResponseBreached   bool       `json:"response_breached"`
	ResolutionBreached bool       `json:"resolution_breached"`
	EvaluatedAt        time.Time  `json:"evaluated_at"`
}

// TicketResponse salida de un ticket.
type TicketResponse struct {
	ID          string           `json:"id"`
	Number      string           `json:"number"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	Level       string           `json:"level"`
	ServiceID   string           `json:"service_id,omitempty"`
	CreatedBy   string           `json:"created_by"`
	AssigneeID  string           `json:"assignee_id,omitempty"`
	RequestIDs  []string         `json:"request_ids"`
	SLA         SLAStateResponse `json:"sla"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TicketListResponse lista paginada de tickets.
type TicketListResponse struct {
	Items []TicketResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// TicketMessageResponse mensaje del hilo.
type TicketMessageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketDetailResponse ticket con su hilo.
type TicketDetailResponse struct {
	Ticket   TicketResponse          `json:"ticket"`
	Messages []TicketMessageResponse `json:"messages"`
}
