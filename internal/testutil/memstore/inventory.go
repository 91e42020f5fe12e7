package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var (
	_ repository.UnitRepository          = (*unitRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
)

type unitRepo struct{ s *Store }

func (r *unitRepo) Create(_ context.Context, u *entity.ProductUnit) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.units {
			if e.TenantID != u.TenantID {
				continue
			}
			if e.Code == u.Code || (u.Serial != "" && e.Serial == u.Serial) {
				return domain.ErrDuplicate
			}
		}
		st.units[u.ID] = *u
		return nil
	})
}

func (r *unitRepo) GetByID(_ context.Context, tenantID, id string) (*entity.ProductUnit, error) {
	var out *entity.ProductUnit
	r.s.read(func(st *state) {
		if v, ok := st.units[id]; ok && v.TenantID == tenantID {
			out = &v
		}
	})
	return out, nil
}

func (r *unitRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.ProductUnit, error) {
	var out *entity.ProductUnit
	r.s.read(func(st *state) {
		for _, v := range st.units {
			if v.TenantID == tenantID && v.Code == code {
				v := v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *unitRepo) GetByCodeForUpdate(ctx context.Context, tenantID, code string) (*entity.ProductUnit, error) {
	return r.GetByCode(ctx, tenantID, code)
}

func (r *unitRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductUnit, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *unitRepo) PickInStock(_ context.Context, tenantID, productID string, n int) ([]*entity.ProductUnit, error) {
	var out []*entity.ProductUnit
	r.s.read(func(st *state) {
		for _, v := range st.units {
			if v.TenantID == tenantID && v.ProductID == productID && v.Status == entity.UnitStatusInStock {
				v := v
				out = append(out, &v)
			}
		}
	})
	sortByCreated(out, func(u *entity.ProductUnit) time.Time { return u.CreatedAt }, func(u *entity.ProductUnit) string { return u.ID })
	return page(out, n, 0), nil
}

func (r *unitRepo) UpdateStatus(_ context.Context, tenantID, id string, from []string, to, assignedTo string) error {
	return r.s.write(func(st *state) error {
		u, ok := st.units[id]
		if !ok || u.TenantID != tenantID || !in(from, u.Status) {
			return domain.ErrConflict
		}
		u.Status, u.AssignedTo, u.UpdatedAt = to, assignedTo, time.Now()
		st.units[id] = u
		return nil
	})
}

func (r *unitRepo) List(_ context.Context, tenantID string, f entity.UnitFilter) ([]*entity.ProductUnit, error) {
	var out []*entity.ProductUnit
	r.s.read(func(st *state) {
		for _, v := range st.units {
			if v.TenantID != tenantID ||
				(f.ProductID != "" && v.ProductID != f.ProductID) ||
				(f.Status != "" && v.Status != f.Status) ||
				(f.AssignedTo != "" && v.AssignedTo != f.AssignedTo) {
				continue
			}
			v := v
			out = append(out, &v)
		}
	})
	sortBy(out, func(u *entity.ProductUnit) string { return u.Code })
	return page(out, f.Limit, f.Offset), nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.s.write(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListByUnit(_ context.Context, tenantID, unitID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m entity.StockMovement) bool { return m.TenantID == tenantID && m.UnitID == unitID }), nil
}

func (r *movementRepo) ListByRequest(_ context.Context, tenantID, requestID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m entity.StockMovement) bool { return m.TenantID == tenantID && m.RequestID == requestID }), nil
}

func (r *movementRepo) ListSince(_ context.Context, tenantID string, since time.Time) ([]*entity.StockMovement, error) {
	return r.filter(func(m entity.StockMovement) bool { return m.TenantID == tenantID && !m.CreatedAt.Before(since) }), nil
}

func (r *movementRepo) filter(keep func(entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if keep(m) {
				m := m
				out = append(out, &m)
			}
		}
	})
	sortByCreated(out, func(m *entity.StockMovement) time.Time { return m.CreatedAt }, func(m *entity.StockMovement) string { return m.ID })
	return out
}
