package ports

import (
	"context"

	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// Repos agrupa los repositorios. Fuera de una transacción se construye sobre el pool;
// dentro de TxRunner.Run todos quedan atados a la misma tx.
type Repos struct {
	Users         repository.UserRepository
	Tenants       repository.TenantRepository
	Services      repository.ServiceRepository
	Products      repository.ProductRepository
	Stock         repository.StockLevelRepository
	Movements     repository.StockMovementRepository
	Units         repository.UnitRepository
	Invoices      repository.InvoiceRepository
	Sequences     repository.SequenceRepository
	Requests      repository.RequestRepository
	RequestEvents repository.RequestEventRepository
	Assets        repository.AssetRepository
	Tickets       repository.TicketRepository
	Rbac          repository.RbacRepository
	Idempotency   repository.IdempotencyRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
