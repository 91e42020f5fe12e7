package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una requisición.
const (
	RequestStatusDraft     = "DRAFT"
	RequestStatusSubmitted = "SUBMITTED"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusFulfilled = "FULFILLED"
	RequestStatusCancelled = "CANCELLED"
)

// Tipos de requisición.
const (
	RequestTypeSupply = "SUPPLY"
	RequestTypeReturn = "RETURN"
)

// Rol de una línea (las requisiciones de sustitución llevan OLD y NEW).
const (
	ItemRoleNormal = "NORMAL"
	ItemRoleOld    = "OLD"
	ItemRoleNew    = "NEW"
)

// Signature firma capturada en la aprobación o en el retiro.
type Signature struct {
	UserID   string
	Name     string
	Hash     string // hash SHA-256 del trazo/imagen enviado por el cliente
	SignedAt time.Time
}

// Request es una requisición. Nunca se borra; solo cambia de estado.
type Request struct {
	ID             string
	TenantID       string
	Number         string
	Type           string
	Status         string
	ServiceID      string
	RequesterID    string
	RequesterName  string // snapshot al crear
	RequesterEmail string // snapshot al crear
	Notes          string
	Items          []RequestItem

	Approval        *Signature
	Pickup          *Signature
	RejectionReason string

	PickupLockBy    string
	PickupLockUntil *time.Time

	SubmittedAt *time.Time
	DecidedAt   *time.Time
	FulfilledAt *time.Time
	FulfilledBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestItem línea de una requisición.
type RequestItem struct {
	ID              string
	RequestID       string
	ProductID       string
	Quantity        decimal.Decimal
	DestinationCode string // código de unidad concreta (opcional)
	Role            string
}

// RequestEvent fila de auditoría de una requisición (append-only).
type RequestEvent struct {
	ID         string
	TenantID   string
	RequestID  string
	FromStatus string
	ToStatus   string
	Action     string
	ActorID    string
	Note       string
	CreatedAt  time.Time
}

// RequestFilter filtros de listado.
type RequestFilter struct {
	Status      string
	ServiceID   string
	RequesterID string
	Limit       int
	Offset      int
}

// HasPickupLock informa si userID tiene un bloqueo de firma vigente en now.
func (r *Request) HasPickupLock(userID string, now time.Time) bool {
	return r.PickupLockBy == userID && r.PickupLockUntil != nil && now.Before(*r.PickupLockUntil)
}
