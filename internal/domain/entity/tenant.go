package entity

import "time"

// Tenant representa un municipio/organización del sistema (multi-tenant).
type Tenant struct {
	ID        string
	Name      string
	Code      string // código corto usado en numeración de documentos
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
