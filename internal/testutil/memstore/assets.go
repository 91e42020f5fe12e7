package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.AssetRepository = (*assetRepo)(nil)

type assetRepo struct{ s *Store }

func (r *assetRepo) Create(_ context.Context, a *entity.MunicipalAsset) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.assets {
			if e.TenantID == a.TenantID && (e.UnitID == a.UnitID || e.AssetTag == a.AssetTag) {
				return domain.ErrDuplicate
			}
		}
		st.assets[a.ID] = *a
		return nil
	})
}

func (r *assetRepo) GetByID(_ context.Context, tenantID, id string) (*entity.MunicipalAsset, error) {
	var out *entity.MunicipalAsset
	r.s.read(func(st *state) {
		if v, ok := st.assets[id]; ok && v.TenantID == tenantID {
			out = &v
		}
	})
	return out, nil
}

func (r *assetRepo) GetByUnit(_ context.Context, tenantID, unitID string) (*entity.MunicipalAsset, error) {
	var out *entity.MunicipalAsset
	r.s.read(func(st *state) {
		for _, v := range st.assets {
			if v.TenantID == tenantID && v.UnitID == unitID {
				v := v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *assetRepo) List(_ context.Context, tenantID string, f entity.AssetFilter) ([]*entity.MunicipalAsset, error) {
	var out []*entity.MunicipalAsset
	r.s.read(func(st *state) {
		for _, v := range st.assets {
			if v.TenantID != tenantID ||
				(f.Status != "" && v.Status != f.Status) ||
				(f.ServiceID != "" && v.ServiceID != f.ServiceID) ||
				(f.CustodianID != "" && v.CustodianID != f.CustodianID) {
				continue
			}
			v := v
			out = append(out, &v)
		}
	})
	sortBy(out, func(a *entity.MunicipalAsset) string { return a.AssetTag })
	return page(out, f.Limit, f.Offset), nil
}

func (r *assetRepo) UpdateStatus(_ context.Context, tenantID, id string, from []string, to string, at time.Time) error {
	return r.s.write(func(st *state) error {
		a, ok := st.assets[id]
		if !ok || a.TenantID != tenantID || !in(from, a.Status) {
			return domain.ErrConflict
		}
		a.Status, a.UpdatedAt = to, at
		st.assets[id] = a
		return nil
	})
}

func (r *assetRepo) UpdatePlacement(_ context.Context, a *entity.MunicipalAsset) error {
	return r.s.write(func(st *state) error {
		cur, ok := st.assets[a.ID]
		if !ok || cur.TenantID != a.TenantID || cur.Status == entity.AssetStatusWrittenOff {
			return domain.ErrConflict
		}
		cur.ServiceID, cur.Location, cur.CustodianID, cur.UpdatedAt = a.ServiceID, a.Location, a.CustodianID, a.UpdatedAt
		st.assets[a.ID] = cur
		return nil
	})
}

func (r *assetRepo) AppendEvent(_ context.Context, ev *entity.MunicipalAssetEvent) error {
	return r.s.write(func(st *state) error {
		st.assetEvents = append(st.assetEvents, *ev)
		return nil
	})
}

func (r *assetRepo) AppendMovement(_ context.Context, mv *entity.MunicipalAssetMovement) error {
	return r.s.write(func(st *state) error {
		st.assetMovements = append(st.assetMovements, *mv)
		return nil
	})
}

func (r *assetRepo) ListEvents(_ context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetEvent, error) {
	var out []*entity.MunicipalAssetEvent
	r.s.read(func(st *state) {
		for _, e := range st.assetEvents {
			if e.TenantID == tenantID && e.AssetID == assetID {
				e := e
				out = append(out, &e)
			}
		}
	})
	return out, nil
}

func (r *assetRepo) ListMovements(_ context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetMovement, error) {
	var out []*entity.MunicipalAssetMovement
	r.s.read(func(st *state) {
		for _, m := range st.assetMovements {
			if m.TenantID == tenantID && m.AssetID == assetID {
				m := m
				out = append(out, &m)
			}
		}
	})
	return out, nil
}
