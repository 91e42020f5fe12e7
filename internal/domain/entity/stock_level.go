package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es el saldo disponible en almacén de un producto (tabla materializada).
// Para productos serializados coincide con el número de unidades IN_STOCK.
type StockLevel struct {
	TenantID  string
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
