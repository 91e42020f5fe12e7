package requests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

const execKey = "exec-7f3a9c21"

func TestExecute_EntregaSerializadosYGranel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0001", "LAP-0002", "LAP-0003")
	e.f.SetStock(e.f.Bulk.ID, 10)

	id := e.signed(t,
		dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(2)},
		dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(4)},
	)

	out, replayed, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{Notes: "entrega en obra"})
	require.NoError(t, err)
	assert.False(t, replayed)

	assert.Equal(t, entity.RequestStatusFulfilled, out.Request.Status)
	assert.Equal(t, e.f.Warehouse.ID, out.Request.FulfilledBy)
	require.NotNil(t, out.Request.FulfilledAt)
	assert.Len(t, out.Movements, 3)
	require.Len(t, out.Assets, 2)

	// se entregan las unidades más antiguas
	for _, code := range []string{"LAP-0001", "LAP-0002"} {
		u := e.f.Unit(code)
		assert.Equal(t, entity.UnitStatusAcquired, u.Status, code)
		assert.Equal(t, e.f.Staff.ID, u.AssignedTo, code)
	}
	assert.Equal(t, entity.UnitStatusInStock, e.f.Unit("LAP-0003").Status)
	assert.True(t, e.f.Stock(e.f.Serialized.ID).Equal(qty(1)))
	assert.True(t, e.f.Stock(e.f.Bulk.ID).Equal(qty(6)))

	for _, a := range out.Assets {
		assert.Equal(t, entity.AssetStatusActive, a.Status)
		assert.Equal(t, e.f.Service.ID, a.ServiceID)
		assert.Equal(t, e.f.Service.Location, a.Location)
		assert.Equal(t, e.f.Staff.ID, a.CustodianID)
	}

	movs, err := e.f.Store.Repos().Movements.ListByRequest(ctx, e.f.Tenant.ID, id)
	require.NoError(t, err)
	assert.Len(t, movs, 3)

	events, err := e.uc.Events(ctx, e.f.Actor(e.f.Staff), id)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, ActionExecute, last.Action)
	assert.Equal(t, "entrega en obra", last.Note)
	assert.Contains(t, e.f.Events.Types(), "request.fulfilled")
}

func TestExecute_CodigoDestinoSeReservaAntes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0001", "LAP-0002", "LAP-0003")

	// la línea automática va primero en la requisición, pero no debe tomar LAP-0001
	id := e.signed(t,
		dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(1)},
		dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(1), DestinationCode: "LAP-0001"},
	)

	out, _, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Assets, 2)
	assert.Equal(t, entity.UnitStatusAcquired, e.f.Unit("LAP-0001").Status)
	assert.Equal(t, entity.UnitStatusAcquired, e.f.Unit("LAP-0002").Status)
	assert.Equal(t, entity.UnitStatusInStock, e.f.Unit("LAP-0003").Status)
}

func TestExecute_CodigoDestinoNoDisponible(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0001")

	id := e.signed(t, dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(1), DestinationCode: "LAP-9999"})
	_, _, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecute_StockInsuficienteNoDejaEfectos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0001")
	e.f.SetStock(e.f.Bulk.ID, 10)

	// el granel se descuenta antes de fallar la línea serializada
	id := e.signed(t,
		dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(3)},
		dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(2)},
	)
	commits := e.f.Store.Commits()

	_, _, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, commits, e.f.Store.Commits())
	assert.True(t, e.f.Stock(e.f.Bulk.ID).Equal(qty(10)))
	assert.True(t, e.f.Stock(e.f.Serialized.ID).Equal(qty(1)))
	assert.Equal(t, entity.UnitStatusInStock, e.f.Unit("LAP-0001").Status)

	req, err := e.uc.Get(ctx, e.f.Actor(e.f.Warehouse), id)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, req.Status)

	stored, err := e.f.Store.Repos().Idempotency.Get(ctx, e.f.Tenant.ID, execKey)
	require.NoError(t, err)
	assert.Nil(t, stored, "la clave no se guarda si la ejecución falla")

	// con stock repuesto, la misma clave ejecuta normalmente
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0002")
	out, replayed, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, entity.RequestStatusFulfilled, out.Request.Status)
}

func TestExecute_ReintentoDevuelveLaMismaRespuesta(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	e.f.SetStock(e.f.Bulk.ID, 10)
	id := e.signed(t, dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: decimal.RequireFromString("2.5")})

	first, replayed, err := e.uc.Execute(ctx, wh, id, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)
	require.False(t, replayed)
	commits := e.f.Store.Commits()

	second, replayed, err := e.uc.Execute(ctx, wh, id, "  "+execKey+"  ", dto.ExecuteRequestRequest{})
	require.NoError(t, err)
	assert.True(t, replayed)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(b1), string(b2))

	assert.Equal(t, commits, e.f.Store.Commits())
	assert.True(t, e.f.Stock(e.f.Bulk.ID).Equal(decimal.RequireFromString("7.5")))

	// una nueva clave sobre la requisición ya entregada es un conflicto
	_, _, err = e.uc.Execute(ctx, wh, id, "exec-otra-clave", dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecute_ClaveUsadaEnOtraRequisicion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	e.f.SetStock(e.f.Bulk.ID, 10)
	item := dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(1)}
	first := e.signed(t, item)
	second := e.signed(t, item)

	_, _, err := e.uc.Execute(ctx, wh, first, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)

	_, _, err = e.uc.Execute(ctx, wh, second, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrIdempotencyKeyReused)

	req, err := e.uc.Get(ctx, wh, second)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusApproved, req.Status)
}

func TestExecute_Precondiciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	e.f.SetStock(e.f.Bulk.ID, 10)
	item := dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(1)}

	signed := e.signed(t, item)
	for _, k := range []string{"", "corta", string(make([]byte, MaxIdempotencyKeyLen+1))} {
		_, _, err := e.uc.Execute(ctx, wh, signed, k, dto.ExecuteRequestRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "clave %q", k)
	}

	_, _, err := e.uc.Execute(ctx, e.f.Actor(e.f.Staff), signed, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	unsigned := e.approved(t, item)
	_, _, err = e.uc.Execute(ctx, wh, unsigned, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict, "sin firma de retiro")

	draft := e.create(t, item).ID
	_, _, err = e.uc.Execute(ctx, wh, draft, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = e.uc.Execute(ctx, wh, "00000000-0000-0000-0000-000000000000", execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// txAdelantado ejecuta antes una vez, justo antes de abrir la primera transacción.
type txAdelantado struct {
	inner ports.TxRunner
	antes func()
	hecho bool
}

func (t *txAdelantado) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if !t.hecho {
		t.hecho = true
		t.antes()
	}
	return t.inner.Run(ctx, fn)
}

func TestExecute_ConcurrenteConLaMismaClaveDevuelveLaRespuestaGuardada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	e.f.AddUnits(e.f.Serialized.ID, "LAP-0001")
	id := e.signed(t, dto.RequestItemInput{ProductID: e.f.Serialized.ID, Quantity: qty(1)})

	// otra ejecución con la misma clave confirma mientras esta ya leyó la requisición
	var primera *dto.ExecuteResponse
	tx := &txAdelantado{inner: e.f.Store.TxRunner()}
	tx.antes = func() {
		out, replayed, err := e.uc.Execute(ctx, wh, id, execKey, dto.ExecuteRequestRequest{})
		require.NoError(t, err)
		require.False(t, replayed)
		primera = out
	}
	e.uc.tx = tx

	out, replayed, err := e.uc.Execute(ctx, wh, id, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)
	assert.True(t, replayed)
	require.NotNil(t, primera)

	b1, err := json.Marshal(primera)
	require.NoError(t, err)
	b2, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(b1), string(b2))
	assert.True(t, e.f.Stock(e.f.Serialized.ID).IsZero())
}

func TestExecute_ConcurrenteConOtraClaveEsConflicto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	e.f.SetStock(e.f.Bulk.ID, 10)
	id := e.signed(t, dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(2)})

	tx := &txAdelantado{inner: e.f.Store.TxRunner()}
	tx.antes = func() {
		_, _, err := e.uc.Execute(ctx, wh, id, "exec-primera-clave", dto.ExecuteRequestRequest{})
		require.NoError(t, err)
	}
	e.uc.tx = tx

	_, replayed, err := e.uc.Execute(ctx, wh, id, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, replayed)
	assert.True(t, e.f.Stock(e.f.Bulk.ID).Equal(qty(8)))

	stored, err := e.f.Store.Repos().Idempotency.Get(ctx, e.f.Tenant.ID, execKey)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestExecute_ReintentoSinPermisoNoRecibeLaRespuestaGuardada(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.f.SetStock(e.f.Bulk.ID, 10)
	id := e.signed(t, dto.RequestItemInput{ProductID: e.f.Bulk.ID, Quantity: qty(1)})

	_, _, err := e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), id, execKey, dto.ExecuteRequestRequest{})
	require.NoError(t, err)

	// el solicitante conoce la clave pero no tiene requests:execute
	out, replayed, err := e.uc.Execute(ctx, e.f.Actor(e.f.Staff), id, execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, replayed)
	assert.Nil(t, out)

	_, _, err = e.uc.Execute(ctx, e.f.Actor(e.f.Warehouse), "00000000-0000-0000-0000-000000000000", execKey, dto.ExecuteRequestRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
