package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var (
	_ repository.RequestRepository      = (*requestRepo)(nil)
	_ repository.RequestEventRepository = (*requestEventRepo)(nil)
)

type requestRepo struct{ s *Store }

func copyRequest(r entity.Request) *entity.Request {
	r.Items = append([]entity.RequestItem(nil), r.Items...)
	return &r
}

func (r *requestRepo) Create(_ context.Context, req *entity.Request) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return domain.ErrDuplicate
		}
		st.requests[req.ID] = *copyRequest(*req)
		return nil
	})
}

func (r *requestRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Request, error) {
	var out *entity.Request
	r.s.read(func(st *state) {
		if v, ok := st.requests[id]; ok && v.TenantID == tenantID {
			out = copyRequest(v)
		}
	})
	return out, nil
}

func (r *requestRepo) List(_ context.Context, tenantID string, f entity.RequestFilter) ([]*entity.Request, error) {
	var out []*entity.Request
	r.s.read(func(st *state) {
		for _, v := range st.requests {
			if v.TenantID != tenantID ||
				(f.Status != "" && v.Status != f.Status) ||
				(f.ServiceID != "" && v.ServiceID != f.ServiceID) ||
				(f.RequesterID != "" && v.RequesterID != f.RequesterID) {
				continue
			}
			v := *copyRequest(v)
			v.Items = nil
			out = append(out, &v)
		}
	})
	// más recientes primero
	sortByCreated(out, func(r *entity.Request) time.Time { return r.CreatedAt }, func(r *entity.Request) string { return r.ID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *requestRepo) UpdateDraft(_ context.Context, req *entity.Request) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.requests[req.ID]
		if !ok || cur.TenantID != req.TenantID || cur.Status != entity.RequestStatusDraft {
			return domain.ErrConflict
		}
		cur.Notes = req.Notes
		cur.Items = append([]entity.RequestItem(nil), req.Items...)
		cur.UpdatedAt = req.UpdatedAt
		st.requests[req.ID] = cur
		return nil
	})
}

func (r *requestRepo) Transition(_ context.Context, tenantID, id string, t repository.RequestTransition) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.requests[id]
		if !ok || cur.TenantID != tenantID || !in(t.From, cur.Status) {
			return domain.ErrConflict
		}
		at := t.At
		cur.Status = t.To
		cur.UpdatedAt = at
		switch t.To {
		case entity.RequestStatusSubmitted:
			cur.SubmittedAt = &at
		case entity.RequestStatusApproved, entity.RequestStatusRejected:
			cur.DecidedAt = &at
		case entity.RequestStatusFulfilled:
			cur.FulfilledAt = &at
			cur.PickupLockBy, cur.PickupLockUntil = "", nil
		}
		if t.FulfilledBy != "" {
			cur.FulfilledBy = t.FulfilledBy
		}
		if t.RejectionReason != "" {
			cur.RejectionReason = t.RejectionReason
		}
		if t.Approval != nil {
			sig := *t.Approval
			cur.Approval = &sig
		}
		st.requests[id] = cur
		return nil
	})
}

func (r *requestRepo) AcquirePickupLock(_ context.Context, tenantID, id, userID string, until, now time.Time) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.requests[id]
		if !ok || cur.TenantID != tenantID || cur.Status != entity.RequestStatusApproved || cur.Pickup != nil {
			return domain.ErrSignatureLockHeld
		}
		free := cur.PickupLockBy == "" || cur.PickupLockBy == userID ||
			(cur.PickupLockUntil != nil && !cur.PickupLockUntil.After(now))
		if !free {
			return domain.ErrSignatureLockHeld
		}
		cur.PickupLockBy, cur.PickupLockUntil, cur.UpdatedAt = userID, &until, now
		st.requests[id] = cur
		return nil
	})
}

func (r *requestRepo) RecordPickup(_ context.Context, tenantID, id string, sig entity.Signature) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.requests[id]
		if !ok || cur.TenantID != tenantID || cur.Status != entity.RequestStatusApproved || cur.Pickup != nil ||
			cur.PickupLockBy != sig.UserID || cur.PickupLockUntil == nil || !cur.PickupLockUntil.After(sig.SignedAt) {
			return domain.ErrSignatureLockExpired
		}
		cur.Pickup = &sig
		cur.PickupLockBy, cur.PickupLockUntil, cur.UpdatedAt = "", nil, sig.SignedAt
		st.requests[id] = cur
		return nil
	})
}

// ExpirePickupLock adelanta el vencimiento del bloqueo (simula el paso del tiempo).
func (s *Store) ExpirePickupLock(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.st.requests[id]; ok {
		cur.PickupLockUntil = &at
		s.st.requests[id] = cur
	}
}

type requestEventRepo struct{ s *Store }

func (r *requestEventRepo) Append(_ context.Context, ev *entity.RequestEvent) error {
	return r.s.write(func(st *state) error {
		st.requestEvents = append(st.requestEvents, *ev)
		return nil
	})
}

func (r *requestEventRepo) ListByRequest(_ context.Context, tenantID, requestID string) ([]*entity.RequestEvent, error) {
	var out []*entity.RequestEvent
	r.s.read(func(st *state) {
		for _, e := range st.requestEvents {
			if e.TenantID == tenantID && e.RequestID == requestID {
				e := e
				out = append(out, &e)
			}
		}
	})
	// orden de inserción; el SQL ordena por created_at, id y aquí varias filas comparten instante
	return out, nil
}
