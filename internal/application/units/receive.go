package units

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/mapper"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// Topes de una factura: líneas por factura y unidades serializadas por línea.
const (
	MaxInvoiceLines      = 200
	MaxSerializedPerLine = 500
)

// ReceiveInvoice registra una factura de proveedor y da entrada al almacén:
// una unidad IN_STOCK por cada cantidad de producto serializado (códigos dados o
// generados como <SKU>-<seq>) y un movimiento IN por línea no serializada.
func (uc *UseCase) ReceiveInvoice(ctx context.Context, actor ports.Actor, in dto.ReceiveInvoiceRequest) (*dto.ReceiveInvoiceResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermStockReceive); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Supplier) == "" || strings.TrimSpace(in.Number) == "" || len(in.Lines) == 0 || len(in.Lines) > MaxInvoiceLines {
		return nil, domain.ErrInvalidInput
	}
	products := make([]*entity.Product, len(in.Lines))
	for i, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		p, err := uc.repos.Products.GetByID(ctx, actor.TenantID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		if p.Serialized {
			n := line.Quantity.IntPart()
			if !line.Quantity.Equal(decimal.NewFromInt(n)) || n > MaxSerializedPerLine {
				return nil, domain.ErrInvalidInput
			}
			if (len(line.Codes) != 0 && int64(len(line.Codes)) != n) || (len(line.Serials) != 0 && int64(len(line.Serials)) != n) {
				return nil, domain.ErrInvalidInput
			}
		} else if len(line.Codes) != 0 || len(line.Serials) != 0 {
			return nil, domain.ErrInvalidInput
		}
		products[i] = p
	}

	now := uc.now()
	issued := in.IssuedAt
	if issued.IsZero() {
		issued = now
	}
	invoice := &entity.Invoice{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		Supplier:  strings.TrimSpace(in.Supplier),
		Number:    strings.TrimSpace(in.Number),
		IssuedAt:  issued,
		Total:     in.Total,
		CreatedAt: now,
		CreatedBy: actor.UserID,
	}
	out := &dto.ReceiveInvoiceResponse{InvoiceID: invoice.ID, Units: []dto.UnitResponse{}, Movements: []dto.MovementResponse{}}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Invoices.Create(ctx, invoice); err != nil {
			return err
		}
		for i, line := range in.Lines {
			p := products[i]
			if !p.Serialized {
				mov, err := inventory.BulkIn(ctx, r, actor.TenantID, actor.UserID, p.ID, invoice.ID, line.Quantity, now)
				if err != nil {
					return err
				}
				out.Movements = append(out.Movements, mapper.Movement(mov))
				continue
			}
			n := int(line.Quantity.IntPart())
			for k := 0; k < n; k++ {
				code := ""
				if len(line.Codes) > 0 {
					code = strings.TrimSpace(line.Codes[k])
				} else {
					seq, err := r.Sequences.Next(ctx, actor.TenantID, "unit:"+p.ID)
					if err != nil {
						return err
					}
					code = UnitCode(p.SKU, seq)
				}
				serial := ""
				if len(line.Serials) > 0 {
					serial = strings.TrimSpace(line.Serials[k])
				}
				unit, mov, err := inventory.ReceiveUnit(ctx, r, actor.TenantID, actor.UserID, p, code, serial, invoice.ID, now)
				if err != nil {
					return err
				}
				out.Units = append(out.Units, mapper.Unit(unit))
				out.Movements = append(out.Movements, mapper.Movement(mov))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.Publish(ports.Event{
		TenantID: actor.TenantID, Type: "stock.received", ResourceID: invoice.ID,
		ActorID: actor.UserID, At: now,
	})
	return out, nil
}

// UnitCode código generado para una unidad: <SKU>-<seq con 4 dígitos>.
func UnitCode(sku string, seq int64) string {
	return fmt.Sprintf("%s-%04d", strings.ToUpper(sku), seq)
}
