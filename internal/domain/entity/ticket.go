package entity

import "time"

// Estados de ticket.
const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusWaiting    = "WAITING"
	TicketStatusResolved   = "RESOLVED"
	TicketStatusClosed     = "CLOSED"
)

// Prioridades.
const (
	TicketPriorityLow      = "LOW"
	TicketPriorityMedium   = "MEDIUM"
	TicketPriorityHigh     = "HIGH"
	TicketPriorityCritical = "CRITICAL"
)

// Niveles de soporte.
const (
	TicketLevel1 = "L1"
	TicketLevel2 = "L2"
	TicketLevel3 = "L3"
)

// Ticket de soporte con marcas de SLA.
type Ticket struct {
	ID              string
	TenantID        string
	Number          string
	Title           string
	Description     string
	Status          string
	Priority        string
	Level           string
	ServiceID       string
	CreatedBy       string
	AssigneeID      string
	ResponseDueAt   time.Time
	ResolutionDueAt time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	RequestIDs      []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketMessage mensaje del hilo. IsSystem marca las filas de auditoría generadas
// por cambios de estado/nivel.
type TicketMessage struct {
	ID        string
	TenantID  string
	TicketID  string
	AuthorID  string
	Body      string
	IsSystem  bool
	CreatedAt time.Time
}

// TicketFilter filtros de listado.
type TicketFilter struct {
	Status     string
	Priority   string
	AssigneeID string
	Limit      int
	Offset     int
}
