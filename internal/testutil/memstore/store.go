// Package memstore implementa en memoria todos los puertos de persistencia para
// las pruebas de casos de uso. TxRunner toma una copia del estado y la restaura
// si la función devuelve error, igual que un rollback.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

type ticketLink struct {
	tenantID, ticketID, requestID string
}

type state struct {
	tenants        map[string]entity.Tenant
	users          map[string]entity.User
	services       map[string]entity.MunicipalService
	products       map[string]entity.Product
	stock          map[string]entity.StockLevel
	movements      []entity.StockMovement
	units          map[string]entity.ProductUnit
	invoices       map[string]entity.Invoice
	sequences      map[string]int64
	requests       map[string]entity.Request
	requestEvents  []entity.RequestEvent
	assets         map[string]entity.MunicipalAsset
	assetEvents    []entity.MunicipalAssetEvent
	assetMovements []entity.MunicipalAssetMovement
	tickets        map[string]entity.Ticket
	ticketLinks    []ticketLink
	ticketMessages []entity.TicketMessage
	roles          map[string]entity.RbacRole
	assignments    map[string]entity.RbacAssignment
	idempotency    map[string]entity.IdempotencyKey
}

func newState() *state {
	return &state{
		tenants:     map[string]entity.Tenant{},
		users:       map[string]entity.User{},
		services:    map[string]entity.MunicipalService{},
		products:    map[string]entity.Product{},
		stock:       map[string]entity.StockLevel{},
		units:       map[string]entity.ProductUnit{},
		invoices:    map[string]entity.Invoice{},
		sequences:   map[string]int64{},
		requests:    map[string]entity.Request{},
		assets:      map[string]entity.MunicipalAsset{},
		tickets:     map[string]entity.Ticket{},
		roles:       map[string]entity.RbacRole{},
		assignments: map[string]entity.RbacAssignment{},
		idempotency: map[string]entity.IdempotencyKey{},
	}
}

// clone copia mapas y slices; los valores se reemplazan completos al escribir,
// así que compartir sus campos internos es seguro.
func (s *state) clone() *state {
	return &state{
		tenants:        cloneMap(s.tenants),
		users:          cloneMap(s.users),
		services:       cloneMap(s.services),
		products:       cloneMap(s.products),
		stock:          cloneMap(s.stock),
		movements:      append([]entity.StockMovement(nil), s.movements...),
		units:          cloneMap(s.units),
		invoices:       cloneMap(s.invoices),
		sequences:      cloneMap(s.sequences),
		requests:       cloneMap(s.requests),
		requestEvents:  append([]entity.RequestEvent(nil), s.requestEvents...),
		assets:         cloneMap(s.assets),
		assetEvents:    append([]entity.MunicipalAssetEvent(nil), s.assetEvents...),
		assetMovements: append([]entity.MunicipalAssetMovement(nil), s.assetMovements...),
		tickets:        cloneMap(s.tickets),
		ticketLinks:    append([]ticketLink(nil), s.ticketLinks...),
		ticketMessages: append([]entity.TicketMessage(nil), s.ticketMessages...),
		roles:          cloneMap(s.roles),
		assignments:    cloneMap(s.assignments),
		idempotency:    cloneMap(s.idempotency),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store base de datos en memoria.
type Store struct {
	mu   sync.Mutex // protege st
	txMu sync.Mutex // serializa transacciones
	st   *state

	txCount int // transacciones confirmadas
}

// New crea un Store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Repos devuelve los repositorios sobre el Store.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Users:         &userRepo{s},
		Tenants:       &tenantRepo{s},
		Services:      &serviceRepo{s},
		Products:      &productRepo{s},
		Stock:         &stockRepo{s},
		Movements:     &movementRepo{s},
		Units:         &unitRepo{s},
		Invoices:      &invoiceRepo{s},
		Sequences:     &sequenceRepo{s},
		Requests:      &requestRepo{s},
		RequestEvents: &requestEventRepo{s},
		Assets:        &assetRepo{s},
		Tickets:       &ticketRepo{s},
		Rbac:          &rbacRepo{s},
		Idempotency:   &idempotencyRepo{s},
	}
}

// TxRunner devuelve un ports.TxRunner con rollback por snapshot.
func (s *Store) TxRunner() ports.TxRunner {
	return txRunner{s}
}

// Commits transacciones confirmadas hasta ahora.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

type txRunner struct {
	s *Store
}

func (t txRunner) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snapshot := t.s.st.clone()
	t.s.mu.Unlock()

	if err := fn(t.s.Repos()); err != nil {
		t.s.mu.Lock()
		t.s.st = snapshot
		t.s.mu.Unlock()
		return err
	}
	t.s.mu.Lock()
	t.s.txCount++
	t.s.mu.Unlock()
	return nil
}

// read ejecuta f con el estado bloqueado.
func (s *Store) read(f func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.st)
}

// write ejecuta f con el estado bloqueado y devuelve su error.
func (s *Store) write(f func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.st)
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

// page aplica limit/offset como lo hace LIMIT/OFFSET en SQL.
func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func byTimeThenID(ti, tj time.Time, idi, idj string) bool {
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return idi < idj
}

func sortByCreated[T any](list []T, at func(T) time.Time, id func(T) string) {
	sort.SliceStable(list, func(i, j int) bool {
		return byTimeThenID(at(list[i]), at(list[j]), id(list[i]), id(list[j]))
	})
}

func in(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortBy[T any](list []T, k func(T) string) {
	sort.SliceStable(list, func(i, j int) bool { return k(list[i]) < k(list[j]) })
}
