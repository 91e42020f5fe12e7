// Package realtime reparte eventos post-commit a los suscriptores SSE de cada tenant,
// opcionalmente retransmitidos entre instancias vía Redis.
package realtime

import (
	"sync"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
)

// DefaultBuffer eventos pendientes por suscriptor antes de descartar.
const DefaultBuffer = 32

var _ ports.Notifier = (*Hub)(nil)

// Hub fan-out en memoria por tenant. Un suscriptor lento pierde eventos; nunca bloquea al emisor.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewHub construye el hub. buffer <= 0 usa DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), buffer: buffer}
}

// Subscription canal de eventos de un tenant.
type Subscription struct {
	hub      *Hub
	tenantID string
	ch       chan ports.Event
	once     sync.Once
}

// Events canal de lectura; se cierra al desuscribir o al cerrar el hub.
func (s *Subscription) Events() <-chan ports.Event {
	return s.ch
}

// Close desuscribe. Idempotente.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registra un suscriptor para tenantID. Con el hub cerrado devuelve una
// suscripción con el canal ya cerrado.
func (h *Hub) Subscribe(tenantID string) *Subscription {
	s := &Subscription{hub: h, tenantID: tenantID, ch: make(chan ports.Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	set, ok := h.subs[tenantID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[tenantID] = set
	}
	set[s] = struct{}{}
	subscribers.Inc()
	return s
}

// Publish entrega ev a los suscriptores de su tenant sin bloquear.
func (h *Hub) Publish(ev ports.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered.Inc()
	for s := range h.subs[ev.TenantID] {
		select {
		case s.ch <- ev:
		default:
			dropped.Inc()
		}
	}
}

// Subscribers número de suscriptores activos del tenant.
func (h *Hub) Subscribers(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tenantID])
}

// Close cierra todas las suscripciones; los streams abiertos terminan.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for tenantID, set := range h.subs {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
			subscribers.Dec()
		}
		delete(h.subs, tenantID)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.tenantID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.tenantID)
	}
	s.once.Do(func() { close(s.ch) })
	subscribers.Dec()
}
