package entity

import "time"

// Estados de una unidad física (ProductUnit).
const (
	UnitStatusInStock  = "IN_STOCK"
	UnitStatusAcquired = "ACQUIRED"
	UnitStatusInRepair = "IN_REPAIR"
	UnitStatusScrapped = "SCRAPPED"
	UnitStatusLost     = "LOST"
)

// ProductUnit es un ejemplar serializado de un producto.
// AssignedTo es el usuario que la tiene a cargo (solo en ACQUIRED, o en IN_REPAIR
// cuando la unidad debe volver a su tenedor).
type ProductUnit struct {
	ID         string
	TenantID   string
	ProductID  string
	Code       string // código de inventario / etiqueta escaneable
	Serial     string
	Status     string
	AssignedTo string
	InvoiceID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UnitFilter filtros para listar unidades.
type UnitFilter struct {
	ProductID  string
	Status     string
	AssignedTo string
	Limit      int
	Offset     int
}
