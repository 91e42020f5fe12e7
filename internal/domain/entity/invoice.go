package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice es la factura de proveedor con la que ingresan unidades al almacén.
type Invoice struct {
	ID        string
	TenantID  string
	Supplier  string
	Number    string
	IssuedAt  time.Time
	Total     decimal.Decimal
	CreatedAt time.Time
	CreatedBy string
}
