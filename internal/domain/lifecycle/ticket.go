package lifecycle

import (
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

var ticketTransitions = map[string][]string{
	entity.TicketStatusOpen:       {entity.TicketStatusInProgress, entity.TicketStatusWaiting, entity.TicketStatusResolved, entity.TicketStatusClosed},
	entity.TicketStatusInProgress: {entity.TicketStatusWaiting, entity.TicketStatusResolved},
	entity.TicketStatusWaiting:    {entity.TicketStatusInProgress, entity.TicketStatusResolved},
	entity.TicketStatusResolved:   {entity.TicketStatusClosed, entity.TicketStatusInProgress},
}

// CanTransitionTicket informa si el ticket puede pasar de from a to.
func CanTransitionTicket(from, to string) bool {
	return contains(ticketTransitions[from], to)
}

// SLAPolicy plazos de primera respuesta y resolución.
type SLAPolicy struct {
	Response   time.Duration
	Resolution time.Duration
}

var slaByPriority = map[string]SLAPolicy{
	entity.TicketPriorityCritical: {Response: time.Hour, Resolution: 4 * time.Hour},
	entity.TicketPriorityHigh:     {Response: 4 * time.Hour, Resolution: 24 * time.Hour},
	entity.TicketPriorityMedium:   {Response: 8 * time.Hour, Resolution: 72 * time.Hour},
	entity.TicketPriorityLow:      {Response: 24 * time.Hour, Resolution: 120 * time.Hour},
}

// SLAFor devuelve la política de la prioridad y false si la prioridad no existe.
func SLAFor(priority string) (SLAPolicy, bool) {
	p, ok := slaByPriority[priority]
	return p, ok
}

// SLAState estado de cumplimiento de un ticket en un instante.
type SLAState struct {
	ResponseBreached   bool
	ResolutionBreached bool
}

// EvaluateSLA calcula incumplimientos: un plazo se incumple si se cumplió tarde
// o si sigue pendiente después de vencer.
func EvaluateSLA(t *entity.Ticket, now time.Time) SLAState {
	var s SLAState
	if t.FirstResponseAt != nil {
		s.ResponseBreached = t.FirstResponseAt.After(t.ResponseDueAt)
	} else {
		s.ResponseBreached = now.After(t.ResponseDueAt)
	}
	switch {
	case t.ResolvedAt != nil:
		s.ResolutionBreached = t.ResolvedAt.After(t.ResolutionDueAt)
	case t.ClosedAt != nil:
		s.ResolutionBreached = t.ClosedAt.After(t.ResolutionDueAt)
	default:
		s.ResolutionBreached = now.After(t.ResolutionDueAt)
	}
	return s
}

// NextLevel devuelve el nivel siguiente de escalamiento y false si ya está en el último.
func NextLevel(level string) (string, bool) {
	switch level {
	case entity.TicketLevel1:
		return entity.TicketLevel2, true
	case entity.TicketLevel2:
		return entity.TicketLevel3, true
	}
	return "", false
}
