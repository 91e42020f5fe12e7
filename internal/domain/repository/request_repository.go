package repository

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// RequestTransition datos de una actualización condicional de estado.
// Solo se escriben los campos no vacíos además de status.
type RequestTransition struct {
	From            []string
	To              string
	At              time.Time
	Approval        *entity.Signature
	RejectionReason string
	FulfilledBy     string
}

// RequestRepository puerto de persistencia de requisiciones. No hay borrado.
type RequestRepository interface {
	// Create inserta la cabecera y sus líneas.
	Create(ctx context.Context, r *entity.Request) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Request, error)
	List(ctx context.Context, tenantID string, f entity.RequestFilter) ([]*entity.Request, error)
	// UpdateDraft reemplaza notas y líneas si la requisición sigue en DRAFT.
	UpdateDraft(ctx context.Context, r *entity.Request) error
	// Transition ejecuta UPDATE ... WHERE status = ANY(From); domain.ErrConflict si no afecta una fila.
	Transition(ctx context.Context, tenantID, id string, t RequestTransition) error
	// AcquirePickupLock toma el bloqueo de firma si está libre, vencido o ya es del usuario;
	// si no, domain.ErrSignatureLockHeld.
	AcquirePickupLock(ctx context.Context, tenantID, id, userID string, until, now time.Time) error
	// RecordPickup guarda la firma de retiro y libera el bloqueo; exige bloqueo vigente del
	// firmante (sig.UserID) a sig.SignedAt, si no domain.ErrSignatureLockExpired.
	RecordPickup(ctx context.Context, tenantID, id string, sig entity.Signature) error
}

// RequestEventRepository bitácora de requisiciones (append-only).
type RequestEventRepository interface {
	Append(ctx context.Context, ev *entity.RequestEvent) error
	ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.RequestEvent, error)
}
