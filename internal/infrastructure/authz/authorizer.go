// Package authz evalúa permisos "objeto:acción" con casbin. Cada tenant tiene un
// enforcer construido desde sus roles y asignaciones persistidos.
package authz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// Dominio comodín: asignaciones sin dependencia valen para todo el tenant.
const tenantWide = "*"

// sub: user:<id> / role:<id>; dom: svc:<id> o "*"; obj:act con comodín "*".
const modelText = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

var _ ports.Authorizer = (*Authorizer)(nil)

// PolicySource lectura de roles y asignaciones del tenant.
type PolicySource interface {
	ListRoles(ctx context.Context, tenantID string) ([]*entity.RbacRole, error)
	ListAssignments(ctx context.Context, tenantID string) ([]*entity.RbacAssignment, error)
}

var _ PolicySource = (repository.RbacRepository)(nil)

// Authorizer implementa ports.Authorizer. El rol global admin no pasa por casbin.
type Authorizer struct {
	source PolicySource
	cache  bool
	ttl    time.Duration
	now    func() time.Time

	mu          sync.RWMutex
	enforcers   map[string]cachedEnforcer
	generations map[string]uint64
	group       singleflight.Group
}

type cachedEnforcer struct {
	enf      *casbin.Enforcer
	loadedAt time.Time
}

// New construye el autorizador. Con cache=false el enforcer se reconstruye en cada
// consulta; con ttl > 0 un enforcer cacheado vence aunque nadie lo invalide.
func New(source PolicySource, cache bool, ttl time.Duration) *Authorizer {
	return &Authorizer{
		source:      source,
		cache:       cache,
		ttl:         ttl,
		now:         time.Now,
		enforcers:   make(map[string]cachedEnforcer),
		generations: make(map[string]uint64),
	}
}

// Can informa si el actor tiene permission en serviceID. Una asignación acotada a
// la dependencia o una de alcance tenant otorgan el permiso.
func (a *Authorizer) Can(ctx context.Context, actor ports.Actor, serviceID, permission string) (bool, error) {
	start := time.Now()
	if actor.Role == entity.RoleAdmin {
		recordDecision("admin", true, time.Since(start))
		return true, nil
	}
	obj, act, ok := splitPermission(permission)
	if !ok {
		return false, fmt.Errorf("authz: permiso inválido %q", permission)
	}
	enf, err := a.enforcer(ctx, actor.TenantID)
	if err != nil {
		return false, err
	}
	sub := "user:" + actor.UserID
	domains := []string{tenantWide}
	if serviceID != "" {
		domains = []string{"svc:" + serviceID, tenantWide}
	}
	for _, dom := range domains {
		allowed, err := enf.Enforce(sub, dom, obj, act)
		if err != nil {
			return false, fmt.Errorf("authz: enforce: %w", err)
		}
		if allowed {
			recordDecision("rbac", true, time.Since(start))
			return true, nil
		}
	}
	recordDecision("rbac", false, time.Since(start))
	return false, nil
}

// Invalidate descarta el enforcer cacheado del tenant. Una construcción en curso
// que leyó las políticas antes de la invalidación no queda en caché.
func (a *Authorizer) Invalidate(tenantID string) {
	a.mu.Lock()
	delete(a.enforcers, tenantID)
	a.generations[tenantID]++
	a.mu.Unlock()
	a.group.Forget(tenantID)
	cacheInvalidations.Inc()
}

func (a *Authorizer) enforcer(ctx context.Context, tenantID string) (*casbin.Enforcer, error) {
	if !a.cache {
		return a.build(ctx, tenantID)
	}
	a.mu.RLock()
	c, ok := a.enforcers[tenantID]
	gen := a.generations[tenantID]
	a.mu.RUnlock()
	if ok && (a.ttl <= 0 || a.now().Sub(c.loadedAt) < a.ttl) {
		return c.enf, nil
	}
	v, err, _ := a.group.Do(tenantID, func() (any, error) {
		loadedAt := a.now()
		enf, err := a.build(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		if a.generations[tenantID] == gen {
			a.enforcers[tenantID] = cachedEnforcer{enf: enf, loadedAt: loadedAt}
		}
		a.mu.Unlock()
		return enf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*casbin.Enforcer), nil
}

// build arma un enforcer en memoria desde roles y asignaciones; no se modifica después.
func (a *Authorizer) build(ctx context.Context, tenantID string) (*casbin.Enforcer, error) {
	start := time.Now()
	roles, err := a.source.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("authz: listar roles: %w", err)
	}
	assignments, err := a.source.ListAssignments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("authz: listar asignaciones: %w", err)
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: modelo: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	enf.EnableAutoSave(false)

	var policies [][]string
	for _, r := range roles {
		for _, p := range r.Permissions {
			obj, act, ok := splitPermission(p)
			if !ok {
				continue
			}
			policies = append(policies, []string{"role:" + r.ID, obj, act})
		}
	}
	if len(policies) > 0 {
		if _, err := enf.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("authz: cargar políticas: %w", err)
		}
	}

	var groupings [][]string
	for _, as := range assignments {
		dom := tenantWide
		if as.ServiceID != "" {
			dom = "svc:" + as.ServiceID
		}
		groupings = append(groupings, []string{"user:" + as.UserID, "role:" + as.RoleID, dom})
	}
	if len(groupings) > 0 {
		if _, err := enf.AddGroupingPolicies(groupings); err != nil {
			return nil, fmt.Errorf("authz: cargar asignaciones: %w", err)
		}
	}
	buildLatency.Observe(time.Since(start).Seconds())
	return enf, nil
}

func splitPermission(p string) (obj, act string, ok bool) {
	obj, act, ok = strings.Cut(p, ":")
	if !ok || obj == "" || act == "" {
		return "", "", false
	}
	return obj, act, true
}
