package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
)

// Channel canal de Redis compartido por todas las instancias.
const Channel = "municipal-ops:events"

const (
	outboxSize     = 256
	publishTimeout = 2 * time.Second
	minBackoff     = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Broker pub/sub entre instancias.
type Broker interface {
	Publish(ctx context.Context, payload []byte) error
	// Subscribe devuelve los mensajes entrantes y una función para cerrar la suscripción.
	Subscribe(ctx context.Context) (<-chan []byte, func() error, error)
}

var _ ports.Notifier = (*Relay)(nil)

// Relay publica eventos en el broker y entrega al hub local lo que llega del broker,
// incluidos los eventos propios. Publish encola sin bloquear.
type Relay struct {
	broker Broker
	hub    *Hub
	log    zerolog.Logger
	outbox chan ports.Event

	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewRelay construye el relay sobre broker y hub.
func NewRelay(broker Broker, hub *Hub, log zerolog.Logger) *Relay {
	return &Relay{
		broker: broker,
		hub:    hub,
		log:    log,
		outbox: make(chan ports.Event, outboxSize),

		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// Publish encola ev; si la cola está llena el evento se descarta.
func (r *Relay) Publish(ev ports.Event) {
	select {
	case r.outbox <- ev:
	default:
		dropped.Inc()
		r.log.Warn().Str("type", ev.Type).Str("tenant", ev.TenantID).Msg("cola de publicación llena, evento descartado")
	}
}

// Run mantiene la suscripción y vacía la cola hasta que ctx se cancele. Si el broker
// rechaza o corta la suscripción, reintenta con espera exponencial; mientras tanto
// los eventos encolados van directo al hub local.
func (r *Relay) Run(ctx context.Context) error {
	wait := r.minBackoff
	for {
		subscribed, err := r.serve(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			wait = r.minBackoff
		}
		resubscribes.Inc()
		r.log.Warn().Err(err).Dur("retry_in", wait).Msg("suscripción al broker perdida")
		if !r.fallback(ctx, wait) {
			return nil
		}
		wait *= 2
		if wait > r.maxBackoff {
			wait = r.maxBackoff
		}
	}
}

// serve atiende una suscripción hasta que el broker la cierre o ctx se cancele.
// subscribed indica que la suscripción llegó a establecerse.
func (r *Relay) serve(ctx context.Context) (subscribed bool, err error) {
	msgs, closeSub, err := r.broker.Subscribe(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = closeSub() }()

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case ev := <-r.outbox:
			r.send(ctx, ev)
		case payload, ok := <-msgs:
			if !ok {
				return true, errors.New("realtime: suscripción cerrada por el broker")
			}
			var ev ports.Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				r.log.Warn().Err(err).Msg("evento inválido recibido")
				continue
			}
			r.hub.Publish(ev)
		}
	}
}

// fallback entrega la cola al hub local durante d; false si ctx se canceló.
func (r *Relay) fallback(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case ev := <-r.outbox:
			r.hub.Publish(ev)
		}
	}
}

func (r *Relay) send(ctx context.Context, ev ports.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Msg("serializar evento")
		return
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.broker.Publish(pctx, payload); err != nil {
		r.log.Error().Err(err).Str("type", ev.Type).Msg("publicar evento en redis")
		// Sin broker el evento al menos llega a los suscriptores locales.
		r.hub.Publish(ev)
	}
}

// RedisBroker Broker sobre Redis Pub/Sub.
type RedisBroker struct {
	client  *redis.Client
	channel string
}

// NewRedisBroker construye el broker sobre client.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client, channel: Channel}
}

// Publish publica payload en el canal.
func (b *RedisBroker) Publish(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe se suscribe al canal y adapta los mensajes a []byte.
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan []byte, func() error, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}
	out := make(chan []byte)
	done := make(chan struct{})
	go func() {
		defer close(out)
		in := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-done:
					return
				}
			}
		}
	}()
	var (
		once     sync.Once
		closeErr error
	)
	closeFn := func() error {
		once.Do(func() {
			close(done)
			closeErr = ps.Close()
		})
		return closeErr
	}
	return out, closeFn, nil
}
