package ports

import "context"

// Actor identidad que ejecuta un caso de uso (sale del JWT).
type Actor struct {
	TenantID string
	UserID   string
	Role     string // rol global: admin, warehouse, staff
}

// Authorizer decide permisos "objeto:acción" con alcance opcional a una dependencia.
type Authorizer interface {
	// Can informa si el actor tiene el permiso en serviceID (vacío = alcance tenant).
	Can(ctx context.Context, actor Actor, serviceID, permission string) (bool, error)
	// Invalidate descarta la política cacheada del tenant.
	Invalidate(tenantID string)
}
