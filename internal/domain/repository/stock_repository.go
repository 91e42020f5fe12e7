package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// StockLevelRepository define el puerto para consultar/actualizar el saldo por producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockLevelRepository interface {
	// Get devuelve saldo cero si el producto aún no tiene fila.
	Get(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); crea la fila en cero si no existe.
	GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error)
	// Add suma delta (puede ser negativo). Devuelve ErrInsufficientStock si el saldo quedaría negativo.
	Add(ctx context.Context, tenantID, productID string, delta decimal.Decimal) error
}
