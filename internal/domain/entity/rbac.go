package entity

import "time"

// RbacRole rol personalizado por tenant. Permissions usa la forma "objeto:acción"
// con comodín "*" (ej. "requests:*", "*:*").
type RbacRole struct {
	ID          string
	TenantID    string
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RbacAssignment asigna un rol a un usuario, opcionalmente acotado a una dependencia.
// ServiceID vacío = alcance de todo el tenant.
type RbacAssignment struct {
	ID        string
	TenantID  string
	UserID    string
	RoleID    string
	ServiceID string
	CreatedAt time.Time
	CreatedBy string
}

// Permisos verificados por los casos de uso.
const (
	PermRequestsCreate  = "requests:create"
	PermRequestsApprove = "requests:approve"
	PermRequestsExecute = "requests:execute"
	PermUnitsTransition = "units:transition"
	PermUnitsSubstitute = "units:substitute"
	PermStockReceive    = "stock:receive"
	PermAssetsManage    = "assets:manage"
	PermTicketsManage   = "tickets:manage"
	PermRbacManage      = "rbac:manage"
	PermCatalogManage   = "catalog:manage"
)
