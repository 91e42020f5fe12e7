package dto

import "time"

// AssetResponse salida de un bien patrimonial.
type AssetResponse struct {
	ID          string    `json:"id"`
	UnitID      string    `json:"unit_id"`
	ProductID   string    `json:"product_id"`
	AssetTag    string    `json:"asset_tag"`
	Status      string    `json:"status"`
	ServiceID   string    `json:"service_id,omitempty"`
	Location    string    `json:"location"`
	CustodianID string    `json:"custodian_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssetListResponse lista paginada de bienes.
type AssetListResponse struct {
	Items []AssetResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// MoveAssetRequest traslado de ubicación (y opcionalmente de dependencia).
type MoveAssetRequest struct {
	ToLocation  string `json:"to_location" validate:"required,min=1,max=200"`
	ToServiceID string `json:"to_service_id" validate:"omitempty,uuid"`
	Note        string `json:"note" validate:"max=1000"`
}

// ChangeCustodianRequest cambio de custodio.
type ChangeCustodianRequest struct {
	CustodianID string `json:"custodian_id" validate:"required,uuid"`
	Note        string `json:"note" validate:"max=1000"`
}

// ChangeAssetStatusRequest cambio manual de estado.
type ChangeAssetStatusRequest struct {
	To   string `json:"to" validate:"required,oneof=ACTIVE IN_STORAGE LOST"`
	Note string `json:"note" validate:"max=1000"`
}

// AssetEventResponse fila del historial de estados.
type AssetEventResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	RequestID  string    `json:"request_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AssetMovementResponse fila del historial de ubicación y custodia.
type AssetMovementResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	FromLocation  string    `json:"from_location,omitempty"`
	ToLocation    string    `json:"to_location,omitempty"`
	FromServiceID string    `json:"from_service_id,omitempty"`
	ToServiceID   string    `json:"to_service_id,omitempty"`
	FromCustodian string    `json:"from_custodian,omitempty"`
	ToCustodian   string    `json:"to_custodian,omitempty"`
	ActorID       string    `json:"actor_id"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssetHistoryResponse bien con su historial completo.
type AssetHistoryResponse struct {
	Asset     AssetResponse           `json:"asset"`
	Events    []AssetEventResponse    `json:"events"`
	Movements []AssetMovementResponse `json:"movements"`
}
