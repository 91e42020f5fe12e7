package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLevelRepository = (*StockRepo)(nil)

// StockRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el saldo actual de un producto.
func (r *StockRepo) Get(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(&s.TenantID, &s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{TenantID: tenantID, ProductID: productID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// GetForUpdate asegura la fila y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	ensure := `
		INSERT INTO stock_levels (tenant_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (tenant_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, tenantID, productID); err != nil {
		return nil, fmt.Errorf("ensure stock level: %w", err)
	}
	query := `
		SELECT tenant_id, product_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2
		FOR UPDATE`
	var s entity.StockLevel
	if err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(&s.TenantID, &s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return &s, nil
}

// Add suma delta al saldo. El CHECK (quantity >= 0) de la tabla rechaza saldos negativos.
func (r *StockRepo) Add(ctx context.Context, tenantID, productID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO stock_levels (tenant_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id, product_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, tenantID, productID, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("add stock level: %w", err)
	}
	return nil
}
