package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// Authorizer autorizador de prueba: concede lo registrado con Grant; el rol admin pasa siempre.
type Authorizer struct {
	mu          sync.Mutex
	grants      map[string]bool
	invalidated []string
	Err         error
}

// NewAuthorizer crea un autorizador sin permisos.
func NewAuthorizer() *Authorizer {
	return &Authorizer{grants: map[string]bool{}}
}

// Grant concede permission a userID en serviceID ("" = todo el tenant).
func (a *Authorizer) Grant(userID, serviceID, permission string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[key(userID, serviceID, permission)] = true
}

// Can implementa ports.Authorizer.
func (a *Authorizer) Can(_ context.Context, actor ports.Actor, serviceID, permission string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return false, a.Err
	}
	if actor.Role == entity.RoleAdmin {
		return true, nil
	}
	return a.grants[key(actor.UserID, serviceID, permission)] || a.grants[key(actor.UserID, "", permission)], nil
}

// Invalidate registra el tenant invalidado.
func (a *Authorizer) Invalidate(tenantID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidated = append(a.invalidated, tenantID)
}

// Invalidated tenants invalidados en orden.
func (a *Authorizer) Invalidated() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.invalidated...)
}

// Recorder notifier que guarda los eventos publicados.
type Recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

// Publish implementa ports.Notifier.
func (r *Recorder) Publish(ev ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Types tipos de evento publicados en orden.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// Fixture datos base: un tenant con admin, bodeguero y funcionario, una
// dependencia, un producto serializado y uno a granel.
type Fixture struct {
	Store      *Store
	Auth       *Authorizer
	Events     *Recorder
	Tenant     entity.Tenant
	Admin      entity.User
	Warehouse  entity.User
	Staff      entity.User
	Service    entity.MunicipalService
	Serialized entity.Product
	Bulk       entity.Product
	Now        time.Time

	clock time.Time
}

// NewFixture construye el Store con los datos base.
func NewFixture() *Fixture {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := &Fixture{Store: New(), Auth: NewAuthorizer(), Events: &Recorder{}, Now: now, clock: now.Add(-24 * time.Hour)}
	r := f.Store.Repos()

	f.Tenant = entity.Tenant{ID: uuid.NewString(), Name: "Municipio de Prueba", Code: "MPR", Status: "active", CreatedAt: now, UpdatedAt: now}
	_ = r.Tenants.Create(ctx, &f.Tenant)

	f.Admin = f.user("admin@mpr.gov.co", "Ana Admin", entity.RoleAdmin)
	f.Warehouse = f.user("bodega@mpr.gov.co", "Bruno Bodega", entity.RoleWarehouse)
	f.Staff = f.user("obras@mpr.gov.co", "Carla Obras", entity.RoleStaff)

	f.Service = entity.MunicipalService{ID: uuid.NewString(), TenantID: f.Tenant.ID, Code: "OBRAS", Name: "Secretaría de Obras", Location: "Edificio Obras, piso 1", CreatedAt: now, UpdatedAt: now}
	_ = r.Services.Upsert(ctx, &f.Service)

	f.Serialized = entity.Product{ID: uuid.NewString(), TenantID: f.Tenant.ID, SKU: "LAP-01", Name: "Portátil", Serialized: true, UnitMeasure: "UND", CreatedAt: now, UpdatedAt: now}
	f.Bulk = entity.Product{ID: uuid.NewString(), TenantID: f.Tenant.ID, SKU: "PAP-01", Name: "Resma de papel", UnitMeasure: "RES", CreatedAt: now, UpdatedAt: now}
	_ = r.Products.Create(ctx, &f.Serialized)
	_ = r.Products.Create(ctx, &f.Bulk)
	return f
}

func (f *Fixture) user(email, name, role string) entity.User {
	u := entity.User{ID: uuid.NewString(), TenantID: f.Tenant.ID, Email: email, Name: name, Role: role, Status: entity.UserStatusActive, CreatedAt: f.Now, UpdatedAt: f.Now}
	_ = f.Store.Repos().Users.Create(context.Background(), &u)
	return u
}

// Actor identidad del usuario en el tenant de la fixture.
func (f *Fixture) Actor(u entity.User) ports.Actor {
	return ports.Actor{TenantID: f.Tenant.ID, UserID: u.ID, Role: u.Role}
}

// AddUnits da de alta unidades IN_STOCK del producto y suma su saldo. Cada unidad
// es un segundo más nueva que la anterior.
func (f *Fixture) AddUnits(productID string, codes ...string) []entity.ProductUnit {
	ctx := context.Background()
	r := f.Store.Repos()
	out := make([]entity.ProductUnit, 0, len(codes))
	for _, code := range codes {
		f.clock = f.clock.Add(time.Second)
		u := entity.ProductUnit{
			ID: uuid.NewString(), TenantID: f.Tenant.ID, ProductID: productID, Code: code, Serial: "SN-" + code,
			Status: entity.UnitStatusInStock, CreatedAt: f.clock, UpdatedAt: f.clock,
		}
		_ = r.Units.Create(ctx, &u)
		_ = r.Stock.Add(ctx, f.Tenant.ID, productID, decimal.NewFromInt(1))
		out = append(out, u)
	}
	return out
}

// SetStock suma qty al saldo del producto.
func (f *Fixture) SetStock(productID string, qty int64) {
	_ = f.Store.Repos().Stock.Add(context.Background(), f.Tenant.ID, productID, decimal.NewFromInt(qty))
}

// Stock saldo actual del producto.
func (f *Fixture) Stock(productID string) decimal.Decimal {
	lvl, _ := f.Store.Repos().Stock.Get(context.Background(), f.Tenant.ID, productID)
	return lvl.Quantity
}

// Unit estado actual de la unidad por código.
func (f *Fixture) Unit(code string) *entity.ProductUnit {
	u, _ := f.Store.Repos().Units.GetByCode(context.Background(), f.Tenant.ID, code)
	return u
}
