package entity

import "time"

// Product representa un artículo del catálogo municipal.
// Serialized indica si cada ejemplar físico se controla como ProductUnit.
type Product struct {
	ID          string
	TenantID    string
	SKU         string // código único por tenant
	Name        string
	Description string
	Serialized  bool
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
