package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

const unitColumns = `id, tenant_id, product_id, code, serial, status, assigned_to, invoice_id, created_at, updated_at`

// UnitRepo implementación de UnitRepository sobre PostgreSQL.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// Create inserta una unidad. Devuelve domain.ErrDuplicate si el código ya existe en el tenant.
func (r *UnitRepo) Create(ctx context.Context, u *entity.ProductUnit) error {
	query := `
		INSERT INTO product_units (` + unitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.TenantID, u.ProductID, u.Code, u.Serial, u.Status,
		nullable(u.AssignedTo), nullable(u.InvoiceID), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product unit: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID.
func (r *UnitRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units WHERE tenant_id = $1 AND id = $2`
	return scanUnit(r.q.QueryRow(ctx, query, tenantID, id))
}

// GetByCode obtiene una unidad por código.
func (r *UnitRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units WHERE tenant_id = $1 AND code = $2`
	return scanUnit(r.q.QueryRow(ctx, query, tenantID, code))
}

// GetByCodeForUpdate obtiene y bloquea la unidad por código.
func (r *UnitRepo) GetByCodeForUpdate(ctx context.Context, tenantID, code string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units WHERE tenant_id = $1 AND code = $2 FOR UPDATE`
	return scanUnit(r.q.QueryRow(ctx, query, tenantID, code))
}

// GetForUpdate obtiene y bloquea la unidad por ID.
func (r *UnitRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ProductUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM product_units WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	return scanUnit(r.q.QueryRow(ctx, query, tenantID, id))
}

// PickInStock toma hasta n unidades IN_STOCK, las más antiguas primero, saltando las bloqueadas.
func (r *UnitRepo) PickInStock(ctx context.Context, tenantID, productID string, n int) ([]*entity.ProductUnit, error) {
	query := `
		SELECT ` + unitColumns + ` FROM product_units
		WHERE tenant_id = $1 AND product_id = $2 AND status = $3
		ORDER BY created_at, id
		LIMIT $4
		FOR UPDATE SKIP LOCKED`
	return r.list(ctx, query, tenantID, productID, entity.UnitStatusInStock, n)
}

// UpdateStatus actualización condicional: solo si el estado actual está en from.
func (r *UnitRepo) UpdateStatus(ctx context.Context, tenantID, id string, from []string, to, assignedTo string) error {
	query := `
		UPDATE product_units SET status = $4, assigned_to = $5, updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)`
	tag, err := r.q.Exec(ctx, query, tenantID, id, from, to, nullable(assignedTo))
	if err != nil {
		return fmt.Errorf("update product unit status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// List lista unidades con filtros opcionales.
func (r *UnitRepo) List(ctx context.Context, tenantID string, f entity.UnitFilter) ([]*entity.ProductUnit, error) {
	query := `
		SELECT ` + unitColumns + ` FROM product_units
		WHERE tenant_id = $1
		  AND ($2 = '' OR product_id::text = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR assigned_to::text = $4)
		ORDER BY code
		LIMIT $5 OFFSET $6`
	return r.list(ctx, query, tenantID, f.ProductID, f.Status, f.AssignedTo, f.Limit, f.Offset)
}

func (r *UnitRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductUnit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list product units: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductUnit
	for rows.Next() {
		u, err := scanUnitRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUnit(row pgx.Row) (*entity.ProductUnit, error) {
	u, err := scanUnitRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product unit: %w", err)
	}
	return u, nil
}

func scanUnitRow(row pgx.Row) (*entity.ProductUnit, error) {
	var (
		u                     entity.ProductUnit
		assignedTo, invoiceID *string
	)
	if err := row.Scan(&u.ID, &u.TenantID, &u.ProductID, &u.Code, &u.Serial, &u.Status,
		&assignedTo, &invoiceID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.AssignedTo, u.InvoiceID = deref(assignedTo), deref(invoiceID)
	return &u, nil
}
