package entity

import "time"

// Roles globales (claim "role" del JWT). Los permisos finos se otorgan vía RBAC.
const (
	RoleAdmin     = "admin"
	RoleWarehouse = "warehouse"
	RoleStaff     = "staff"
)

// IsRole valida el rol global.
func IsRole(role string) bool {
	return role == RoleAdmin || role == RoleWarehouse || role == RoleStaff
}

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a un Tenant).
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, warehouse, staff
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
