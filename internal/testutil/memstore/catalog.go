package memstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var (
	_ repository.TenantRepository      = (*tenantRepo)(nil)
	_ repository.UserRepository        = (*userRepo)(nil)
	_ repository.ServiceRepository     = (*serviceRepo)(nil)
	_ repository.ProductRepository     = (*productRepo)(nil)
	_ repository.StockLevelRepository  = (*stockRepo)(nil)
	_ repository.SequenceRepository    = (*sequenceRepo)(nil)
	_ repository.InvoiceRepository     = (*invoiceRepo)(nil)
	_ repository.IdempotencyRepository = (*idempotencyRepo)(nil)
)

type tenantRepo struct{ s *Store }

func (r *tenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.tenants {
			if e.Code == t.Code {
				return domain.ErrDuplicate
			}
		}
		st.tenants[t.ID] = *t
		return nil
	})
}

func (r *tenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	var out *entity.Tenant
	r.s.read(func(st *state) {
		if t, ok := st.tenants[id]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *tenantRepo) GetByCode(_ context.Context, code string) (*entity.Tenant, error) {
	var out *entity.Tenant
	r.s.read(func(st *state) {
		for _, t := range st.tenants {
			if t.Code == code {
				t := t
				out = &t
				return
			}
		}
	})
	return out, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.users {
			if e.TenantID == u.TenantID && e.Email == u.Email {
				return domain.ErrDuplicate
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, tenantID, id string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		if u, ok := st.users[id]; ok && u.TenantID == tenantID {
			out = &u
		}
	})
	return out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email && (out == nil || u.CreatedAt.Before(out.CreatedAt)) {
				u := u
				out = &u
			}
		}
	})
	return out, nil
}

func (r *userRepo) GetByEmailAndTenant(_ context.Context, email, tenantID string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email && u.TenantID == tenantID {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

type serviceRepo struct{ s *Store }

func (r *serviceRepo) Upsert(_ context.Context, svc *entity.MunicipalService) error {
	return r.s.write(func(st *state) error {
		for id, e := range st.services {
			if e.TenantID == svc.TenantID && e.Code == svc.Code {
				e.Name, e.Location, e.UpdatedAt = svc.Name, svc.Location, svc.UpdatedAt
				st.services[id] = e
				svc.ID, svc.CreatedAt = e.ID, e.CreatedAt
				return nil
			}
		}
		st.services[svc.ID] = *svc
		return nil
	})
}

func (r *serviceRepo) GetByID(_ context.Context, tenantID, id string) (*entity.MunicipalService, error) {
	var out *entity.MunicipalService
	r.s.read(func(st *state) {
		if v, ok := st.services[id]; ok && v.TenantID == tenantID {
			out = &v
		}
	})
	return out, nil
}

func (r *serviceRepo) List(_ context.Context, tenantID string) ([]*entity.MunicipalService, error) {
	var out []*entity.MunicipalService
	r.s.read(func(st *state) {
		for _, v := range st.services {
			if v.TenantID == tenantID {
				v := v
				out = append(out, &v)
			}
		}
	})
	sortBy(out, func(v *entity.MunicipalService) string { return v.Code })
	return out, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.products {
			if e.TenantID == p.TenantID && e.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func(st *state) {
		if v, ok := st.products[id]; ok && v.TenantID == tenantID {
			out = &v
		}
	})
	return out, nil
}

func (r *productRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(func(st *state) {
		for _, v := range st.products {
			if v.TenantID == tenantID && v.SKU == sku {
				v := v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *productRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.s.read(func(st *state) {
		for _, v := range st.products {
			if v.TenantID == tenantID {
				v := v
				out = append(out, &v)
			}
		}
	})
	sortBy(out, func(v *entity.Product) string { return v.SKU })
	return page(out, limit, offset), nil
}

type stockRepo struct{ s *Store }

func (r *stockRepo) Get(_ context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	out := &entity.StockLevel{TenantID: tenantID, ProductID: productID, Quantity: decimal.Zero}
	r.s.read(func(st *state) {
		if v, ok := st.stock[key(tenantID, productID)]; ok {
			*out = v
		}
	})
	return out, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	_ = r.s.write(func(st *state) error {
		k := key(tenantID, productID)
		if _, ok := st.stock[k]; !ok {
			st.stock[k] = entity.StockLevel{TenantID: tenantID, ProductID: productID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		}
		return nil
	})
	return r.Get(ctx, tenantID, productID)
}

func (r *stockRepo) Add(_ context.Context, tenantID, productID string, delta decimal.Decimal) error {
	return r.s.write(func(st *state) error {
		k := key(tenantID, productID)
		lvl, ok := st.stock[k]
		if !ok {
			lvl = entity.StockLevel{TenantID: tenantID, ProductID: productID, Quantity: decimal.Zero}
		}
		next := lvl.Quantity.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficientStock
		}
		lvl.Quantity = next
		lvl.UpdatedAt = time.Now()
		st.stock[k] = lvl
		return nil
	})
}

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Next(_ context.Context, tenantID, kind string) (int64, error) {
	var n int64
	_ = r.s.write(func(st *state) error {
		k := key(tenantID, kind)
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, nil
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.s.write(func(st *state) error {
		for _, e := range st.invoices {
			if e.TenantID == inv.TenantID && e.Supplier == inv.Supplier && e.Number == inv.Number {
				return domain.ErrDuplicate
			}
		}
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *invoiceRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.s.read(func(st *state) {
		if v, ok := st.invoices[id]; ok && v.TenantID == tenantID {
			out = &v
		}
	})
	return out, nil
}

type idempotencyRepo struct{ s *Store }

func (r *idempotencyRepo) Get(_ context.Context, tenantID, k string) (*entity.IdempotencyKey, error) {
	var out *entity.IdempotencyKey
	r.s.read(func(st *state) {
		if v, ok := st.idempotency[key(tenantID, k)]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r *idempotencyRepo) Create(_ context.Context, k *entity.IdempotencyKey) error {
	return r.s.write(func(st *state) error {
		kk := key(k.TenantID, k.Key)
		if _, ok := st.idempotency[kk]; ok {
			return domain.ErrDuplicate
		}
		st.idempotency[kk] = *k
		return nil
	})
}
