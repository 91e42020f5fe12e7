package ports

import "time"

// Event notificación emitida después del commit de una transición.
type Event struct {
	TenantID   string    `json:"tenant_id"`
	Type       string    `json:"type"` // ej. request.approved, unit.transitioned
	ResourceID string    `json:"resource_id"`
	Status     string    `json:"status,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier publica eventos de tiempo real. Publish no bloquea ni falla:
// la transacción ya fue confirmada cuando se llama.
type Notifier interface {
	Publish(ev Event)
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

// Publish no hace nada.
func (NopNotifier) Publish(Event) {}
