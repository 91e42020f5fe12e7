package assets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
)

func setup(t *testing.T, status string) (*memstore.Fixture, *UseCase, entity.MunicipalAsset) {
	t.Helper()
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, f.Service.ID, entity.PermAssetsManage)
	units := f.AddUnits(f.Serialized.ID, "LAP-0001")
	a := entity.MunicipalAsset{
		ID: uuid.NewString(), TenantID: f.Tenant.ID, UnitID: units[0].ID, ProductID: f.Serialized.ID,
		AssetTag: "LAP-0001", Status: status, ServiceID: f.Service.ID, Location: f.Service.Location,
		CustodianID: f.Staff.ID, CreatedAt: f.Now, UpdatedAt: f.Now,
	}
	require.NoError(t, f.Store.Repos().Assets.Create(context.Background(), &a))
	uc := NewUseCase(f.Store.Repos(), f.Store.TxRunner(), f.Auth, f.Events)
	uc.now = func() time.Time { return f.Now.Add(time.Hour) }
	return f, uc, a
}

func TestMove_TrasladoConHistorial(t *testing.T) {
	f, uc, a := setup(t, entity.AssetStatusActive)
	ctx := context.Background()
	other := entity.MunicipalService{ID: uuid.NewString(), TenantID: f.Tenant.ID, Code: "SALUD", Name: "Secretaría de Salud", CreatedAt: f.Now, UpdatedAt: f.Now}
	require.NoError(t, f.Store.Repos().Services.Upsert(ctx, &other))

	out, err := uc.Move(ctx, f.Actor(f.Warehouse), a.ID, dto.MoveAssetRequest{ToLocation: " Hospital local ", ToServiceID: other.ID, Note: "préstamo"})
	require.NoError(t, err)
	assert.Equal(t, "Hospital local", out.Location)
	assert.Equal(t, other.ID, out.ServiceID)
	assert.Equal(t, f.Staff.ID, out.CustodianID)

	// mismo destino: no hay movimiento nuevo
	_, err = uc.Move(ctx, f.Actor(f.Admin), a.ID, dto.MoveAssetRequest{ToLocation: "Hospital local"})
	require.NoError(t, err)

	h, err := uc.History(ctx, f.Actor(f.Staff), a.ID)
	require.NoError(t, err)
	require.Len(t, h.Movements, 1)
	m := h.Movements[0]
	assert.Equal(t, entity.AssetMovementLocation, m.Kind)
	assert.Equal(t, f.Service.Location, m.FromLocation)
	assert.Equal(t, "Hospital local", m.ToLocation)
	assert.Equal(t, f.Service.ID, m.FromServiceID)
	assert.Equal(t, other.ID, m.ToServiceID)
	assert.Equal(t, "préstamo", m.Note)
	assert.Equal(t, []string{"asset.moved", "asset.moved"}, f.Events.Types())
}

func TestMove_Errores(t *testing.T) {
	f, uc, a := setup(t, entity.AssetStatusActive)
	ctx := context.Background()

	_, err := uc.Move(ctx, f.Actor(f.Warehouse), a.ID, dto.MoveAssetRequest{ToLocation: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Move(ctx, f.Actor(f.Warehouse), a.ID, dto.MoveAssetRequest{ToLocation: "Bodega", ToServiceID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Move(ctx, f.Actor(f.Staff), a.ID, dto.MoveAssetRequest{ToLocation: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Move(ctx, f.Actor(f.Warehouse), uuid.NewString(), dto.MoveAssetRequest{ToLocation: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeCustodian(t *testing.T) {
	f, uc, a := setup(t, entity.AssetStatusActive)
	ctx := context.Background()

	_, err := uc.ChangeCustodian(ctx, f.Actor(f.Warehouse), a.ID, dto.ChangeCustodianRequest{CustodianID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := uc.ChangeCustodian(ctx, f.Actor(f.Warehouse), a.ID, dto.ChangeCustodianRequest{CustodianID: f.Warehouse.ID, Note: "resguardo"})
	require.NoError(t, err)
	assert.Equal(t, f.Warehouse.ID, out.CustodianID)
	assert.Equal(t, f.Service.Location, out.Location)

	h, err := uc.History(ctx, f.Actor(f.Staff), a.ID)
	require.NoError(t, err)
	require.Len(t, h.Movements, 1)
	assert.Equal(t, entity.AssetMovementCustodian, h.Movements[0].Kind)
	assert.Equal(t, f.Staff.ID, h.Movements[0].FromCustodian)
	assert.Equal(t, f.Warehouse.ID, h.Movements[0].ToCustodian)
}

func TestChangeStatus(t *testing.T) {
	f, uc, a := setup(t, entity.AssetStatusActive)
	ctx := context.Background()

	out, err := uc.ChangeStatus(ctx, f.Actor(f.Warehouse), a.ID, dto.ChangeAssetStatusRequest{To: entity.AssetStatusLost, Note: " no aparece en inventario "})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusLost, out.Status)

	_, err = uc.ChangeStatus(ctx, f.Actor(f.Warehouse), a.ID, dto.ChangeAssetStatusRequest{To: entity.AssetStatusLost})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.ChangeStatus(ctx, f.Actor(f.Warehouse), a.ID, dto.ChangeAssetStatusRequest{To: entity.AssetStatusWrittenOff})
	assert.ErrorIs(t, err, domain.ErrConflict, "la baja solo llega desde la unidad")

	h, err := uc.History(ctx, f.Actor(f.Staff), a.ID)
	require.NoError(t, err)
	require.Len(t, h.Events, 1)
	assert.Equal(t, entity.AssetStatusActive, h.Events[0].FromStatus)
	assert.Equal(t, "no aparece en inventario", h.Events[0].Note)
}

func TestBienDadoDeBajaNoAdmiteCambios(t *testing.T) {
	f, uc, a := setup(t, entity.AssetStatusWrittenOff)
	ctx := context.Background()
	wh := f.Actor(f.Warehouse)

	_, err := uc.Move(ctx, wh, a.ID, dto.MoveAssetRequest{ToLocation: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.ChangeCustodian(ctx, wh, a.ID, dto.ChangeCustodianRequest{CustodianID: f.Warehouse.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.ChangeStatus(ctx, wh, a.ID, dto.ChangeAssetStatusRequest{To: entity.AssetStatusActive})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := uc.Get(ctx, wh, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Service.Location, got.Location)
}

func TestList_FiltraPorCustodio(t *testing.T) {
	f, uc, _ := setup(t, entity.AssetStatusActive)
	ctx := context.Background()

	mine, err := uc.List(ctx, f.Actor(f.Staff), entity.AssetFilter{CustodianID: f.Staff.ID})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)

	none, err := uc.List(ctx, f.Actor(f.Staff), entity.AssetFilter{CustodianID: f.Warehouse.ID})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}
