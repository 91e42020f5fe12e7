package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestItemInput línea de una requisición. DestinationCode pide una unidad concreta.
type RequestItemInput struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity"`
	DestinationCode string          `json:"destination_code" validate:"omitempty,max=100"`
}

// CreateRequestRequest entrada para crear una requisición en DRAFT.
type CreateRequestRequest struct {
	ServiceID string             `json:"service_id" validate:"required,uuid"`
	Notes     string             `json:"notes" validate:"max=2000"`
	Items     []RequestItemInput `json:"items" validate:"dive"`
}

// UpdateDraftRequest reemplaza notas y líneas de un borrador.
type UpdateDraftRequest struct {
	Notes string             `json:"notes" validate:"max=2000"`
	Items []RequestItemInput `json:"items" validate:"required,min=1,dive"`
}

// SignatureInput firma capturada en el cliente (imagen o trazo codificado).
type SignatureInput struct {
	SignerName string `json:"signer_name" validate:"required,min=1,max=200"`
	Signature  string `json:"signature" validate:"required,min=8"`
}

// RejectRequestRequest motivo obligatorio del rechazo.
type RejectRequestRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// CancelRequestRequest motivo opcional de la cancelación.
type CancelRequestRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// ExecuteRequestRequest cuerpo de la ejecución en almacén (la clave va en el header Idempotency-Key).
type ExecuteRequestRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// SignatureResponse firma registrada.
type SignatureResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Hash     string    `json:"hash"`
	SignedAt time.Time `json:"signed_at"`
}

// RequestItemResponse línea de una requisición.
type RequestItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	DestinationCode string          `json:"destination_code,omitempty"`
	Role            string          `json:"role"`
}

// RequestResponse salida de una requisición.
type RequestResponse struct {
	ID              string                `json:"id"`
	TenantID        string                `json:"tenant_id"`
	Number          string                `json:"number"`
	Type            string                `json:"type"`
	Status          string                `json:"status"`
	ServiceID       string                `json:"service_id"`
	RequesterID     string                `json:"requester_id"`
	RequesterName   string                `json:"requester_name"`
	RequesterEmail  string                `json:"requester_email"`
	Notes           string                `json:"notes"`
	Items           []RequestItemResponse `json:"items"`
	Approval        *SignatureResponse    `json:"approval,omitempty"`
	Pickup          *SignatureResponse    `json:"pickup,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	PickupLockBy    string                `json:"pickup_lock_by,omitempty"`
	PickupLockUntil *time.Time            `json:"pickup_lock_until,omitempty"`
	SubmittedAt     *time.Time            `json:"submitted_at,omitempty"`
	DecidedAt       *time.Time            `json:"decided_at,omitempty"`
	FulfilledAt     *time.Time            `json:"fulfilled_at,omitempty"`
	FulfilledBy     string                `json:"fulfilled_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// RequestListResponse lista paginada de requisiciones.
type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// RequestEventResponse fila de la bitácora de una requisición.
type RequestEventResponse struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PickupLockResponse bloqueo de firma obtenido.
type PickupLockResponse struct {
	RequestID   string    `json:"request_id"`
	LockedBy    string    `json:"locked_by"`
	LockedUntil time.Time `json:"locked_until"`
}

// ExecuteResponse resultado de la ejecución en almacén. Es lo que se guarda
// con la clave de idempotencia y se devuelve igual en los reintentos.
type ExecuteResponse struct {
	Request   RequestResponse    `json:"request"`
	Movements []MovementResponse `json:"movements"`
	Assets    []AssetResponse    `json:"assets"`
}
