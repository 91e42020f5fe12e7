package entity

import "time"

// MunicipalService representa una secretaría o dependencia solicitante
// (ej. Obras Públicas, Salud). Las requisiciones y los permisos RBAC se
// pueden acotar a una dependencia.
type MunicipalService struct {
	ID        string
	TenantID  string
	Code      string
	Name      string
	Location  string // ubicación física por defecto para activos entregados
	CreatedAt time.Time
	UpdatedAt time.Time
}
