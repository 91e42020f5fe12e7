package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitResponse salida de una unidad física.
type UnitResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Code       string    `json:"code"`
	Serial     string    `json:"serial,omitempty"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	InvoiceID  string    `json:"invoice_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UnitListResponse lista paginada de unidades.
type UnitListResponse struct {
	Items []UnitResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	UnitID     string          `json:"unit_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	InvoiceID  string          `json:"invoice_id,omitempty"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	CreatedBy  string          `json:"created_by"`
}

// TransitionUnitRequest cambio de estado de una unidad.
type TransitionUnitRequest struct {
	To         string `json:"to" validate:"required,oneof=IN_STOCK ACQUIRED IN_REPAIR SCRAPPED LOST"`
	Reason     string `json:"reason" validate:"max=1000"`
	AssigneeID string `json:"assignee_id" validate:"omitempty,uuid"`
}

// TransitionUnitResponse unidad actualizada con el movimiento registrado.
type TransitionUnitResponse struct {
	Unit     UnitResponse     `json:"unit"`
	Movement MovementResponse `json:"movement"`
	Asset    *AssetResponse   `json:"asset,omitempty"`
}

// SubstituteRequest sustitución de un equipo entregado por otro del almacén.
type SubstituteRequest struct {
	OldCode   string `json:"old_code" validate:"required,max=100"`
	NewCode   string `json:"new_code" validate:"required,max=100"`
	RetireTo  string `json:"retire_to" validate:"required,oneof=IN_STOCK IN_REPAIR SCRAPPED LOST"`
	Reason    string `json:"reason" validate:"required,min=3,max=1000"`
	ServiceID string `json:"service_id" validate:"omitempty,uuid"`
}

// SubstituteResponse requisición de devolución generada y ambas unidades.
type SubstituteResponse struct {
	ReturnRequest RequestResponse `json:"return_request"`
	OldUnit       UnitResponse    `json:"old_unit"`
	NewUnit       UnitResponse    `json:"new_unit"`
	Asset         *AssetResponse  `json:"asset,omitempty"`
}

// ReceiveLineInput línea de una factura de proveedor.
// Para productos serializados Codes es opcional (se generan <SKU>-<seq>).
type ReceiveLineInput struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	Codes     []string        `json:"codes" validate:"omitempty,max=500,dive,min=1,max=100"`
	Serials   []string        `json:"serials" validate:"omitempty,max=500,dive,max=100"`
}

// ReceiveInvoiceRequest ingreso de mercancía al almacén.
type ReceiveInvoiceRequest struct {
	Supplier string             `json:"supplier" validate:"required,min=1,max=200"`
	Number   string             `json:"number" validate:"required,min=1,max=50"`
	IssuedAt time.Time          `json:"issued_at"`
	Total    decimal.Decimal    `json:"total"`
	Lines    []ReceiveLineInput `json:"lines" validate:"required,min=1,max=200,dive"`
}

// ReceiveInvoiceResponse factura registrada con las unidades creadas.
type ReceiveInvoiceResponse struct {
	InvoiceID string             `json:"invoice_id"`
	Units     []UnitResponse     `json:"units"`
	Movements []MovementResponse `json:"movements"`
}
