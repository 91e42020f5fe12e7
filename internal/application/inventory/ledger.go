// Package inventory contiene el motor de movimientos de stock: cambia el estado de
// las unidades, escribe el libro de movimientos, ajusta saldos y mantiene el bien
// patrimonial asociado. Todas las funciones se ejecutan con repositorios atados a
// una transacción abierta por el caso de uso que las invoca.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/lifecycle"
)

// Placement ubicación y custodia que recibe el bien cuando la unidad se entrega.
type Placement struct {
	ServiceID   string
	Location    string
	CustodianID string
}

// UnitMove entrada de MoveUnit. Unit debe venir leída (idealmente bloqueada) dentro de la tx.
type UnitMove struct {
	TenantID  string
	ActorID   string
	Unit      *entity.ProductUnit
	To        string
	AssignTo  string // obligatorio hacia ACQUIRED salvo desde IN_REPAIR (vuelve al tenedor previo)
	RequestID string
	Reason    string
	At        time.Time
	// Placement no nil crea o reactiva el bien patrimonial al pasar a ACQUIRED.
	Placement *Placement
	// ReleaseHolder desvincula al tenedor aunque la unidad vaya a reparación.
	ReleaseHolder bool
}

// UnitMoveResult estado final de la unidad, movimiento escrito y bien afectado (si hay).
type UnitMoveResult struct {
	Unit     *entity.ProductUnit
	Movement *entity.StockMovement
	Asset    *entity.MunicipalAsset
}

// MoveUnit aplica la transición de la unidad con su movimiento, ajuste de saldo y
// sincronización del bien patrimonial. Devuelve ErrConflict si la transición no es
// legal o si otra transacción cambió el estado antes (actualización condicional).
func MoveUnit(ctx context.Context, r ports.Repos, in UnitMove) (*UnitMoveResult, error) {
	u := in.Unit
	from := u.Status
	movType, ok := lifecycle.UnitMovementType(from, in.To)
	if !ok {
		return nil, domain.ErrConflict
	}

	assignTo := ""
	switch {
	case in.To == entity.UnitStatusAcquired:
		assignTo = in.AssignTo
		if assignTo == "" && from == entity.UnitStatusInRepair {
			assignTo = u.AssignedTo
		}
		if assignTo == "" {
			return nil, domain.ErrInvalidInput
		}
	case in.To == entity.UnitStatusInRepair && from == entity.UnitStatusAcquired && !in.ReleaseHolder:
		// la unidad sigue a nombre del tenedor mientras está en reparación
		assignTo = u.AssignedTo
	}

	if err := r.Units.UpdateStatus(ctx, in.TenantID, u.ID, []string{from}, in.To, assignTo); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		TenantID:   in.TenantID,
		ProductID:  u.ProductID,
		UnitID:     u.ID,
		RequestID:  in.RequestID,
		InvoiceID:  u.InvoiceID,
		Type:       movType,
		Quantity:   decimal.NewFromInt(1),
		FromStatus: from,
		ToStatus:   in.To,
		Reason:     in.Reason,
		CreatedAt:  in.At,
		CreatedBy:  in.ActorID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}

	if delta := lifecycle.StockDelta(from, in.To); delta != 0 {
		if err := r.Stock.Add(ctx, in.TenantID, u.ProductID, decimal.NewFromInt(int64(delta))); err != nil {
			return nil, err
		}
	}

	updated := *u
	updated.Status = in.To
	updated.AssignedTo = assignTo
	updated.UpdatedAt = in.At

	asset, err := syncAsset(ctx, r, in, &updated)
	if err != nil {
		return nil, err
	}
	return &UnitMoveResult{Unit: &updated, Movement: mov, Asset: asset}, nil
}

// syncAsset mantiene el estado del bien alineado con el de la unidad.
func syncAsset(ctx context.Context, r ports.Repos, in UnitMove, u *entity.ProductUnit) (*entity.MunicipalAsset, error) {
	asset, err := r.Assets.GetByUnit(ctx, in.TenantID, u.ID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		if in.Placement == nil || u.Status != entity.UnitStatusAcquired {
			return nil, nil
		}
		return createAsset(ctx, r, in, u)
	}

	target := lifecycle.AssetStatusForUnit(u.Status)
	if asset.Status != target {
		if lifecycle.IsAssetClosed(asset.Status) {
			return nil, domain.ErrConflict
		}
		if err := r.Assets.UpdateStatus(ctx, in.TenantID, asset.ID, []string{asset.Status}, target, in.At); err != nil {
			return nil, err
		}
		if err := r.Assets.AppendEvent(ctx, &entity.MunicipalAssetEvent{
			ID:         uuid.New().String(),
			TenantID:   in.TenantID,
			AssetID:    asset.ID,
			Kind:       entity.AssetEventStatus,
			FromStatus: asset.Status,
			ToStatus:   target,
			RequestID:  in.RequestID,
			ActorID:    in.ActorID,
			Note:       in.Reason,
			CreatedAt:  in.At,
		}); err != nil {
			return nil, err
		}
		asset.Status = target
		asset.UpdatedAt = in.At
	}

	if u.Status == entity.UnitStatusAcquired {
		// el custodio del bien es siempre el tenedor de la unidad
		p := Placement{ServiceID: asset.ServiceID, Location: asset.Location, CustodianID: u.AssignedTo}
		if in.Placement != nil {
			p = *in.Placement
		}
		if err := Relocate(ctx, r, in.TenantID, in.ActorID, asset, p, in.Reason, in.At); err != nil {
			return nil, err
		}
	}
	return asset, nil
}

func createAsset(ctx context.Context, r ports.Repos, in UnitMove, u *entity.ProductUnit) (*entity.MunicipalAsset, error) {
	asset := &entity.MunicipalAsset{
		ID:          uuid.New().String(),
		TenantID:    in.TenantID,
		UnitID:      u.ID,
		ProductID:   u.ProductID,
		AssetTag:    u.Code,
		Status:      entity.AssetStatusActive,
		ServiceID:   in.Placement.ServiceID,
		Location:    in.Placement.Location,
		CustodianID: in.Placement.CustodianID,
		CreatedAt:   in.At,
		UpdatedAt:   in.At,
	}
	if err := r.Assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	if err := r.Assets.AppendEvent(ctx, &entity.MunicipalAssetEvent{
		ID:        uuid.New().String(),
		TenantID:  in.TenantID,
		AssetID:   asset.ID,
		Kind:      entity.AssetEventCreated,
		ToStatus:  asset.Status,
		RequestID: in.RequestID,
		ActorID:   in.ActorID,
		Note:      in.Reason,
		CreatedAt: in.At,
	}); err != nil {
		return nil, err
	}
	return asset, nil
}

// Relocate aplica ubicación, dependencia y custodio al bien. Cada cambio efectivo
// deja una fila en el historial de movimientos (LOCATION y/o CUSTODIAN).
func Relocate(ctx context.Context, r ports.Repos, tenantID, actorID string, asset *entity.MunicipalAsset, p Placement, note string, at time.Time) error {
	locChanged := p.Location != asset.Location || p.ServiceID != asset.ServiceID
	custChanged := p.CustodianID != asset.CustodianID
	if !locChanged && !custChanged {
		return nil
	}
	prev := *asset
	asset.Location = p.Location
	asset.ServiceID = p.ServiceID
	asset.CustodianID = p.CustodianID
	asset.UpdatedAt = at
	if err := r.Assets.UpdatePlacement(ctx, asset); err != nil {
		return err
	}
	if locChanged {
		if err := r.Assets.AppendMovement(ctx, &entity.MunicipalAssetMovement{
			ID:            uuid.New().String(),
			TenantID:      tenantID,
			AssetID:       asset.ID,
			Kind:          entity.AssetMovementLocation,
			FromLocation:  prev.Location,
			ToLocation:    asset.Location,
			FromServiceID: prev.ServiceID,
			ToServiceID:   asset.ServiceID,
			ActorID:       actorID,
			Note:          note,
			CreatedAt:     at,
		}); err != nil {
			return err
		}
	}
	if custChanged {
		if err := r.Assets.AppendMovement(ctx, &entity.MunicipalAssetMovement{
			ID:            uuid.New().String(),
			TenantID:      tenantID,
			AssetID:       asset.ID,
			Kind:          entity.AssetMovementCustodian,
			FromCustodian: prev.CustodianID,
			ToCustodian:   asset.CustodianID,
			ActorID:       actorID,
			Note:          note,
			CreatedAt:     at,
		}); err != nil {
			return err
		}
	}
	return nil
}

// BulkOut salida de un producto no serializado: bloquea el saldo (SELECT FOR UPDATE),
// verifica que alcance y escribe un único movimiento OUT por la cantidad.
func BulkOut(ctx context.Context, r ports.Repos, tenantID, actorID, productID, requestID string, qty decimal.Decimal, at time.Time) (*entity.StockMovement, error) {
	level, err := r.Stock.GetForUpdate(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if level.Quantity.LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}
	if err := r.Stock.Add(ctx, tenantID, productID, qty.Neg()); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProductID: productID,
		RequestID: requestID,
		Type:      entity.MovementTypeOut,
		Quantity:  qty,
		CreatedAt: at,
		CreatedBy: actorID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// BulkIn entrada de un producto no serializado asociada a una factura.
func BulkIn(ctx context.Context, r ports.Repos, tenantID, actorID, productID, invoiceID string, qty decimal.Decimal, at time.Time) (*entity.StockMovement, error) {
	if err := r.Stock.Add(ctx, tenantID, productID, qty); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProductID: productID,
		InvoiceID: invoiceID,
		Type:      entity.MovementTypeIn,
		Quantity:  qty,
		CreatedAt: at,
		CreatedBy: actorID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ReceiveUnit da de alta una unidad IN_STOCK con su movimiento IN y suma 1 al saldo.
func ReceiveUnit(ctx context.Context, r ports.Repos, tenantID, actorID string, product *entity.Product, code, serial, invoiceID string, at time.Time) (*entity.ProductUnit, *entity.StockMovement, error) {
	unit := &entity.ProductUnit{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProductID: product.ID,
		Code:      code,
		Serial:    serial,
		Status:    entity.UnitStatusInStock,
		InvoiceID: invoiceID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := r.Units.Create(ctx, unit); err != nil {
		return nil, nil, fmt.Errorf("alta de unidad %s: %w", code, err)
	}
	if err := r.Stock.Add(ctx, tenantID, product.ID, decimal.NewFromInt(1)); err != nil {
		return nil, nil, err
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProductID: product.ID,
		UnitID:    unit.ID,
		InvoiceID: invoiceID,
		Type:      entity.MovementTypeIn,
		Quantity:  decimal.NewFromInt(1),
		ToStatus:  entity.UnitStatusInStock,
		CreatedAt: at,
		CreatedBy: actorID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return unit, mov, nil
}
