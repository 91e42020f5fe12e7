package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementTypeIn        = "IN"
	MovementTypeOut       = "OUT"
	MovementTypeReturn    = "RETURN"
	MovementTypeRepairOut = "REPAIR_OUT"
	MovementTypeRepairIn  = "REPAIR_IN"
	MovementTypeScrap     = "SCRAP"
	MovementTypeLost      = "LOST"
)

// StockMovement es una fila inmutable del libro de movimientos.
// Quantity es siempre positiva; el tipo indica el sentido.
type StockMovement struct {
	ID         string
	TenantID   string
	ProductID  string
	UnitID     string // opcional
	RequestID  string // opcional
	InvoiceID  string // opcional
	Type       string
	Quantity   decimal.Decimal
	FromStatus string // estado de la unidad antes del movimiento (vacío si no aplica)
	ToStatus   string
	Reason     string
	CreatedAt  time.Time
	CreatedBy  string
}
