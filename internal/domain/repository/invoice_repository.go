package repository

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia de facturas de proveedor.
type InvoiceRepository interface {
	// Create devuelve domain.ErrDuplicate si (supplier, number) ya existe en el tenant.
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
}
