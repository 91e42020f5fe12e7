package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*ticketRepo)(nil)

type ticketRepo struct{ s *Store }

func (st *state) ticketWithLinks(t entity.Ticket) *entity.Ticket {
	t.RequestIDs = []string{}
	for _, l := range st.ticketLinks {
		if l.tenantID == t.TenantID && l.ticketID == t.ID {
			t.RequestIDs = append(t.RequestIDs, l.requestID)
		}
	}
	return &t
}

func (r *ticketRepo) Create(_ context.Context, t *entity.Ticket) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tickets[t.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *t
		cp.RequestIDs = nil
		st.tickets[t.ID] = cp
		return nil
	})
}

func (r *ticketRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Ticket, error) {
	var out *entity.Ticket
	r.s.read(func(st *state) {
		if v, ok := st.tickets[id]; ok && v.TenantID == tenantID {
			out = st.ticketWithLinks(v)
		}
	})
	return out, nil
}

func (r *ticketRepo) List(_ context.Context, tenantID string, f entity.TicketFilter) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	r.s.read(func(st *state) {
		for _, v := range st.tickets {
			if v.TenantID != tenantID ||
				(f.Status != "" && v.Status != f.Status) ||
				(f.Priority != "" && v.Priority != f.Priority) ||
				(f.AssigneeID != "" && v.AssigneeID != f.AssigneeID) {
				continue
			}
			out = append(out, st.ticketWithLinks(v))
		}
	})
	sortByCreated(out, func(t *entity.Ticket) time.Time { return t.CreatedAt }, func(t *entity.Ticket) string { return t.ID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return page(out, f.Limit, f.Offset), nil
}

func (r *ticketRepo) UpdateStatus(_ context.Context, tenantID, id string, from []string, to string, at time.Time) error {
	return r.s.write(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok || t.TenantID != tenantID || !in(from, t.Status) {
			return domain.ErrConflict
		}
		t.Status, t.UpdatedAt = to, at
		switch to {
		case entity.TicketStatusResolved:
			t.ResolvedAt = &at
		case entity.TicketStatusInProgress, entity.TicketStatusWaiting:
			t.ResolvedAt = nil
		case entity.TicketStatusClosed:
			t.ClosedAt = &at
		}
		st.tickets[id] = t
		return nil
	})
}

func (r *ticketRepo) MarkFirstResponse(_ context.Context, tenantID, id string, at time.Time) (bool, error) {
	marked := false
	err := r.s.write(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok || t.TenantID != tenantID || t.FirstResponseAt != nil {
			return nil
		}
		t.FirstResponseAt, t.UpdatedAt = &at, at
		st.tickets[id] = t
		marked = true
		return nil
	})
	return marked, err
}

func (r *ticketRepo) UpdateLevel(_ context.Context, tenantID, id, from, to string, at time.Time) error {
	return r.s.write(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok || t.TenantID != tenantID || t.Level != from {
			return domain.ErrConflict
		}
		t.Level, t.UpdatedAt = to, at
		st.tickets[id] = t
		return nil
	})
}

func (r *ticketRepo) LinkRequest(_ context.Context, tenantID, ticketID, requestID string) error {
	return r.s.write(func(st *state) error {
		l := ticketLink{tenantID: tenantID, ticketID: ticketID, requestID: requestID}
		for _, e := range st.ticketLinks {
			if e == l {
				return domain.ErrDuplicate
			}
		}
		st.ticketLinks = append(st.ticketLinks, l)
		return nil
	})
}

func (r *ticketRepo) AddMessage(_ context.Context, m *entity.TicketMessage) error {
	return r.s.write(func(st *state) error {
		st.ticketMessages = append(st.ticketMessages, *m)
		return nil
	})
}

func (r *ticketRepo) ListMessages(_ context.Context, tenantID, ticketID string) ([]*entity.TicketMessage, error) {
	var out []*entity.TicketMessage
	r.s.read(func(st *state) {
		for _, m := range st.ticketMessages {
			if m.TenantID == tenantID && m.TicketID == ticketID {
				m := m
				out = append(out, &m)
			}
		}
	})
	return out, nil
}
