package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var (
	_ repository.RequestRepository      = (*RequestRepo)(nil)
	_ repository.RequestEventRepository = (*RequestEventRepo)(nil)
)

const requestColumns = `id, tenant_id, number, type, status, service_id, requester_id, requester_name, requester_email, notes,
	approval_user_id, approval_name, approval_hash, approved_at,
	pickup_user_id, pickup_name, pickup_hash, picked_up_at,
	rejection_reason, pickup_lock_by, pickup_lock_until,
	submitted_at, decided_at, fulfilled_at, fulfilled_by, created_at, updated_at`

// RequestRepo implementación de RequestRepository sobre PostgreSQL.
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

// Create inserta la cabecera y sus líneas (llamar dentro de una tx).
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	var approvalUser, approvalName, approvalHash *string
	var approvedAt *time.Time
	if req.Approval != nil {
		approvalUser, approvalName, approvalHash = nullable(req.Approval.UserID), nullable(req.Approval.Name), nullable(req.Approval.Hash)
		approvedAt = nullTime(req.Approval.SignedAt)
	}
	query := `
		INSERT INTO requests (id, tenant_id, number, type, status, service_id, requester_id, requester_name, requester_email, notes,
			approval_user_id, approval_name, approval_hash, approved_at,
			submitted_at, decided_at, fulfilled_at, fulfilled_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.TenantID, req.Number, req.Type, req.Status, req.ServiceID, req.RequesterID,
		req.RequesterName, req.RequesterEmail, req.Notes,
		approvalUser, approvalName, approvalHash, approvedAt,
		req.SubmittedAt, req.DecidedAt, req.FulfilledAt, nullable(req.FulfilledBy), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return r.insertItems(ctx, req)
}

func (r *RequestRepo) insertItems(ctx context.Context, req *entity.Request) error {
	query := `
		INSERT INTO request_items (id, tenant_id, request_id, product_id, quantity, destination_code, role, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, it := range req.Items {
		if _, err := r.q.Exec(ctx, query, it.ID, req.TenantID, req.ID, it.ProductID, it.Quantity, it.DestinationCode, it.Role, i); err != nil {
			return fmt.Errorf("insert request item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la requisición con sus líneas.
func (r *RequestRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE tenant_id = $1 AND id = $2`
	req, err := scanRequest(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	items, err := r.items(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return req, nil
}

func (r *RequestRepo) items(ctx context.Context, tenantID, requestID string) ([]entity.RequestItem, error) {
	query := `
		SELECT id, request_id, product_id, quantity, destination_code, role
		FROM request_items WHERE tenant_id = $1 AND request_id = $2 ORDER BY position`
	rows, err := r.q.Query(ctx, query, tenantID, requestID)
	if err != nil {
		return nil, fmt.Errorf("list request items: %w", err)
	}
	defer rows.Close()
	var items []entity.RequestItem
	for rows.Next() {
		var it entity.RequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ProductID, &it.Quantity, &it.DestinationCode, &it.Role); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List lista requisiciones (sin líneas) con filtros; las más recientes primero.
func (r *RequestRepo) List(ctx context.Context, tenantID string, f entity.RequestFilter) ([]*entity.Request, error) {
	query := `
		SELECT ` + requestColumns + ` FROM requests
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR service_id::text = $3)
		  AND ($4 = '' OR requester_id::text = $4)
		ORDER BY created_at DESC, id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, f.Status, f.ServiceID, f.RequesterID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// UpdateDraft reemplaza notas y líneas si la requisición sigue en DRAFT.
func (r *RequestRepo) UpdateDraft(ctx context.Context, req *entity.Request) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE requests SET notes = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status = 'DRAFT'`,
		req.TenantID, req.ID, req.Notes, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update draft request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM request_items WHERE tenant_id = $1 AND request_id = $2`, req.TenantID, req.ID); err != nil {
		return fmt.Errorf("delete request items: %w", err)
	}
	return r.insertItems(ctx, req)
}

// Transition UPDATE condicional de estado con las marcas de tiempo que correspondan al destino.
func (r *RequestRepo) Transition(ctx context.Context, tenantID, id string, t repository.RequestTransition) error {
	var approvalUser, approvalName, approvalHash *string
	var approvedAt *time.Time
	if t.Approval != nil {
		approvalUser, approvalName, approvalHash = nullable(t.Approval.UserID), nullable(t.Approval.Name), nullable(t.Approval.Hash)
		approvedAt = nullTime(t.Approval.SignedAt)
	}
	query := `
		UPDATE requests SET
			status = $4,
			updated_at = $5,
			submitted_at = CASE WHEN $4 = 'SUBMITTED' THEN $5 ELSE submitted_at END,
			decided_at = CASE WHEN $4 IN ('APPROVED', 'REJECTED') THEN $5 ELSE decided_at END,
			fulfilled_at = CASE WHEN $4 = 'FULFILLED' THEN $5 ELSE fulfilled_at END,
			fulfilled_by = COALESCE($6, fulfilled_by),
			rejection_reason = COALESCE($7, rejection_reason),
			approval_user_id = COALESCE($8, approval_user_id),
			approval_name = COALESCE($9, approval_name),
			approval_hash = COALESCE($10, approval_hash),
			approved_at = COALESCE($11, approved_at),
			pickup_lock_by = CASE WHEN $4 = 'FULFILLED' THEN NULL ELSE pickup_lock_by END,
			pickup_lock_until = CASE WHEN $4 = 'FULFILLED' THEN NULL ELSE pickup_lock_until END
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)`
	tag, err := r.q.Exec(ctx, query, tenantID, id, t.From, t.To, t.At,
		nullable(t.FulfilledBy), nullable(t.RejectionReason),
		approvalUser, approvalName, approvalHash, approvedAt,
	)
	if err != nil {
		return fmt.Errorf("transition request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// AcquirePickupLock toma el bloqueo si está libre, vencido o ya es del usuario.
func (r *RequestRepo) AcquirePickupLock(ctx context.Context, tenantID, id, userID string, until, now time.Time) error {
	query := `
		UPDATE requests SET pickup_lock_by = $3, pickup_lock_until = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2 AND status = 'APPROVED' AND picked_up_at IS NULL
		  AND (pickup_lock_by IS NULL OR pickup_lock_by = $3 OR pickup_lock_until <= $5)`
	tag, err := r.q.Exec(ctx, query, tenantID, id, userID, until, now)
	if err != nil {
		return fmt.Errorf("acquire pickup lock: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrSignatureLockHeld
	}
	return nil
}

// RecordPickup guarda la firma de retiro y libera el bloqueo del firmante.
func (r *RequestRepo) RecordPickup(ctx context.Context, tenantID, id string, sig entity.Signature) error {
	query := `
		UPDATE requests SET
			pickup_user_id = $3, pickup_name = $4, pickup_hash = $5, picked_up_at = $6,
			pickup_lock_by = NULL, pickup_lock_until = NULL, updated_at = $6
		WHERE tenant_id = $1 AND id = $2 AND status = 'APPROVED' AND picked_up_at IS NULL
		  AND pickup_lock_by = $3 AND pickup_lock_until > $6`
	tag, err := r.q.Exec(ctx, query, tenantID, id, sig.UserID, sig.Name, sig.Hash, sig.SignedAt)
	if err != nil {
		return fmt.Errorf("record pickup: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrSignatureLockExpired
	}
	return nil
}

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var (
		req                                   entity.Request
		approvalUser, approvalName, approvalH *string
		pickupUser, pickupName, pickupH       *string
		approvedAt, pickedUpAt                *time.Time
		rejection, lockBy, fulfilledBy        *string
	)
	err := row.Scan(
		&req.ID, &req.TenantID, &req.Number, &req.Type, &req.Status, &req.ServiceID, &req.RequesterID,
		&req.RequesterName, &req.RequesterEmail, &req.Notes,
		&approvalUser, &approvalName, &approvalH, &approvedAt,
		&pickupUser, &pickupName, &pickupH, &pickedUpAt,
		&rejection, &lockBy, &req.PickupLockUntil,
		&req.SubmittedAt, &req.DecidedAt, &req.FulfilledAt, &fulfilledBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approvedAt != nil {
		req.Approval = &entity.Signature{UserID: deref(approvalUser), Name: deref(approvalName), Hash: deref(approvalH), SignedAt: *approvedAt}
	}
	if pickedUpAt != nil {
		req.Pickup = &entity.Signature{UserID: deref(pickupUser), Name: deref(pickupName), Hash: deref(pickupH), SignedAt: *pickedUpAt}
	}
	req.RejectionReason = deref(rejection)
	req.PickupLockBy = deref(lockBy)
	req.FulfilledBy = deref(fulfilledBy)
	return &req, nil
}

// RequestEventRepo bitácora de requisiciones sobre PostgreSQL.
type RequestEventRepo struct {
	q Querier
}

// NewRequestEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestEventRepository(q Querier) *RequestEventRepo {
	return &RequestEventRepo{q: q}
}

// Append inserta un evento.
func (r *RequestEventRepo) Append(ctx context.Context, ev *entity.RequestEvent) error {
	query := `
		INSERT INTO request_events (id, tenant_id, request_id, from_status, to_status, action, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, ev.ID, ev.TenantID, ev.RequestID, ev.FromStatus, ev.ToStatus, ev.Action, ev.ActorID, ev.Note, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert request event: %w", err)
	}
	return nil
}

// ListByRequest eventos de una requisición en orden cronológico.
func (r *RequestEventRepo) ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.RequestEvent, error) {
	query := `
		SELECT id, tenant_id, request_id, from_status, to_status, action, actor_id, note, created_at
		FROM request_events WHERE tenant_id = $1 AND request_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, requestID)
	if err != nil {
		return nil, fmt.Errorf("list request events: %w", err)
	}
	defer rows.Close()
	var list []*entity.RequestEvent
	for rows.Next() {
		var ev entity.RequestEvent
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.RequestID, &ev.FromStatus, &ev.ToStatus, &ev.Action, &ev.ActorID, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
