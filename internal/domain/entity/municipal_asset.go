package entity

import "time"

// Estados de un bien patrimonial.
const (
	AssetStatusActive     = "ACTIVE"
	AssetStatusInStorage  = "IN_STORAGE"
	AssetStatusInRepair   = "IN_REPAIR"
	AssetStatusLost       = "LOST"
	AssetStatusWrittenOff = "WRITTEN_OFF"
)

// Tipos de movimiento patrimonial.
const (
	AssetMovementLocation  = "LOCATION"
	AssetMovementCustodian = "CUSTODIAN"
)

// Tipos de evento del historial de estados.
const (
	AssetEventCreated = "CREATED"
	AssetEventStatus  = "STATUS"
)

// MunicipalAsset registro patrimonial derivado de una unidad entregada.
type MunicipalAsset struct {
	ID          string
	TenantID    string
	UnitID      string
	ProductID   string
	AssetTag    string
	Status      string
	ServiceID   string
	Location    string
	CustodianID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MunicipalAssetEvent historial de estados del bien (append-only).
type MunicipalAssetEvent struct {
	ID         string
	TenantID   string
	AssetID    string
	Kind       string // CREATED, STATUS
	FromStatus string
	ToStatus   string
	RequestID  string
	ActorID    string
	Note       string
	CreatedAt  time.Time
}

// MunicipalAssetMovement historial de ubicación y custodia (append-only).
type MunicipalAssetMovement struct {
	ID            string
	TenantID      string
	AssetID       string
	Kind          string // LOCATION, CUSTODIAN
	FromLocation  string
	ToLocation    string
	FromServiceID string
	ToServiceID   string
	FromCustodian string
	ToCustodian   string
	ActorID       string
	Note          string
	CreatedAt     time.Time
}

// AssetFilter filtros de listado.
type AssetFilter struct {
	Status      string
	ServiceID   string
	CustodianID string
	Limit       int
	Offset      int
}
