package units

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/inventory"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
)

func TestSubstitute_ReemplazaYHeredaUbicacion(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, f.Service.ID, entity.PermUnitsSubstitute)
	uc := newUseCase(f)
	ctx := context.Background()
	f.AddUnits(f.Serialized.ID, "LAP-0001", "LAP-0002")
	oldAsset := deliver(t, f, "LAP-0001", f.Staff)

	// el bien viejo se trasladó después de la entrega
	err := f.Store.TxRunner().Run(ctx, func(r ports.Repos) error {
		p := inventory.Placement{ServiceID: f.Service.ID, Location: "Campamento vereda El Salto", CustodianID: f.Staff.ID}
		return inventory.Relocate(ctx, r, f.Tenant.ID, f.Warehouse.ID, oldAsset, p, "obra rural", f.Now)
	})
	require.NoError(t, err)

	out, err := uc.Substitute(ctx, f.Actor(f.Warehouse), dto.SubstituteRequest{
		OldCode:  "LAP-0001",
		NewCode:  "LAP-0002",
		RetireTo: entity.UnitStatusInStock,
		Reason:   "no enciende",
	})
	require.NoError(t, err)

	ret := out.ReturnRequest
	assert.Equal(t, "DEV-000001", ret.Number)
	assert.Equal(t, entity.RequestTypeReturn, ret.Type)
	assert.Equal(t, entity.RequestStatusFulfilled, ret.Status)
	assert.Equal(t, f.Service.ID, ret.ServiceID)
	assert.Equal(t, "Bruno Bodega", ret.RequesterName)
	require.Len(t, ret.Items, 2)
	roles := map[string]string{}
	for _, it := range ret.Items {
		roles[it.Role] = it.DestinationCode
	}
	assert.Equal(t, map[string]string{entity.ItemRoleOld: "LAP-0001", entity.ItemRoleNew: "LAP-0002"}, roles)

	assert.Equal(t, entity.UnitStatusInStock, out.OldUnit.Status)
	assert.Empty(t, out.OldUnit.AssignedTo)
	assert.Equal(t, entity.UnitStatusAcquired, out.NewUnit.Status)
	assert.Equal(t, f.Staff.ID, out.NewUnit.AssignedTo)

	require.NotNil(t, out.Asset)
	assert.Equal(t, "LAP-0002", out.Asset.AssetTag)
	assert.Equal(t, "Campamento vereda El Salto", out.Asset.Location)
	assert.Equal(t, f.Staff.ID, out.Asset.CustodianID)
	assert.Equal(t, f.Service.ID, out.Asset.ServiceID)

	old, err := f.Store.Repos().Assets.GetByID(ctx, f.Tenant.ID, oldAsset.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusInStorage, old.Status)

	// 2 en stock, -1 por la entrega, +1 por la devolución, -1 por la sustitución
	assert.True(t, f.Stock(f.Serialized.ID).Equal(decimal.NewFromInt(1)))

	movs, err := f.Store.Repos().Movements.ListByRequest(ctx, f.Tenant.ID, ret.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	types := []string{movs[0].Type, movs[1].Type}
	assert.ElementsMatch(t, []string{entity.MovementTypeReturn, entity.MovementTypeOut}, types)
	assert.Equal(t, []string{"unit.substituted"}, f.Events.Types())
}

func TestSubstitute_RetiroAReparacionLiberaAlTenedor(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, f.Service.ID, entity.PermUnitsSubstitute)
	uc := newUseCase(f)
	f.AddUnits(f.Serialized.ID, "LAP-0001", "LAP-0002")
	deliver(t, f, "LAP-0001", f.Staff)

	out, err := uc.Substitute(context.Background(), f.Actor(f.Warehouse), dto.SubstituteRequest{
		OldCode: "LAP-0001", NewCode: "LAP-0002", RetireTo: entity.UnitStatusInRepair, Reason: "teclado dañado",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusInRepair, out.OldUnit.Status)
	assert.Empty(t, out.OldUnit.AssignedTo)
	assert.Equal(t, f.Staff.ID, out.NewUnit.AssignedTo)
}

func TestSubstitute_Errores(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, f.Service.ID, entity.PermUnitsSubstitute)
	uc := newUseCase(f)
	ctx := context.Background()
	wh := f.Actor(f.Warehouse)
	f.AddUnits(f.Serialized.ID, "LAP-0001", "LAP-0002", "LAP-0003", "LAP-0004")
	deliver(t, f, "LAP-0001", f.Staff)
	deliver(t, f, "LAP-0004", f.Staff)

	sub := func(oldCode, newCode, retire, serviceID string) error {
		_, err := uc.Substitute(ctx, wh, dto.SubstituteRequest{OldCode: oldCode, NewCode: newCode, RetireTo: retire, Reason: "falla", ServiceID: serviceID})
		return err
	}

	assert.ErrorIs(t, sub("LAP-0001", "LAP-0001", entity.UnitStatusInStock, ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, sub("LAP-0001", "LAP-0002", entity.UnitStatusAcquired, ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, sub("LAP-9999", "LAP-0002", entity.UnitStatusInStock, ""), domain.ErrNotFound)
	assert.ErrorIs(t, sub("LAP-0002", "LAP-0003", entity.UnitStatusInStock, ""), domain.ErrInvalidInput, "sin bien ni dependencia")
	assert.ErrorIs(t, sub("LAP-0002", "LAP-0003", entity.UnitStatusInStock, f.Service.ID), domain.ErrConflict, "la vieja no está entregada")
	assert.ErrorIs(t, sub("LAP-0001", "LAP-0004", entity.UnitStatusInStock, ""), domain.ErrConflict, "la nueva no está en almacén")
	assert.ErrorIs(t, sub("LAP-0001", "LAP-9999", entity.UnitStatusInStock, ""), domain.ErrNotFound)

	_, err := uc.Substitute(ctx, f.Actor(f.Staff), dto.SubstituteRequest{OldCode: "LAP-0001", NewCode: "LAP-0002", RetireTo: entity.UnitStatusInStock, Reason: "falla"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// ningún intento fallido consumió numeración ni movió unidades
	assert.Equal(t, entity.UnitStatusAcquired, f.Unit("LAP-0001").Status)
	assert.Equal(t, entity.UnitStatusInStock, f.Unit("LAP-0002").Status)
	out, err := uc.Substitute(ctx, wh, dto.SubstituteRequest{OldCode: "LAP-0001", NewCode: "LAP-0002", RetireTo: entity.UnitStatusLost, Reason: "robo"})
	require.NoError(t, err)
	assert.Equal(t, "DEV-000001", out.ReturnRequest.Number)
}
