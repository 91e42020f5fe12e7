package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

func TestCanTransitionRequest(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.RequestStatusDraft, entity.RequestStatusSubmitted, true},
		{entity.RequestStatusDraft, entity.RequestStatusCancelled, true},
		{entity.RequestStatusDraft, entity.RequestStatusApproved, false},
		{entity.RequestStatusSubmitted, entity.RequestStatusApproved, true},
		{entity.RequestStatusSubmitted, entity.RequestStatusRejected, true},
		{entity.RequestStatusSubmitted, entity.RequestStatusCancelled, true},
		{entity.RequestStatusApproved, entity.RequestStatusFulfilled, true},
		{entity.RequestStatusApproved, entity.RequestStatusCancelled, false},
		{entity.RequestStatusRejected, entity.RequestStatusSubmitted, false},
		{entity.RequestStatusFulfilled, entity.RequestStatusApproved, false},
		{entity.RequestStatusCancelled, entity.RequestStatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransitionRequest(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUnitMovementType(t *testing.T) {
	mt, ok := UnitMovementType(entity.UnitStatusInStock, entity.UnitStatusAcquired)
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTypeOut, mt)

	mt, ok = UnitMovementType(entity.UnitStatusAcquired, entity.UnitStatusInStock)
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTypeReturn, mt)

	mt, ok = UnitMovementType(entity.UnitStatusInRepair, entity.UnitStatusAcquired)
	assert.True(t, ok)
	assert.Equal(t, entity.MovementTypeRepairIn, mt)

	_, ok = UnitMovementType(entity.UnitStatusScrapped, entity.UnitStatusInStock)
	assert.False(t, ok, "una unidad dada de baja no vuelve al almacén")

	_, ok = UnitMovementType(entity.UnitStatusLost, entity.UnitStatusAcquired)
	assert.False(t, ok)

	_, ok = UnitMovementType(entity.UnitStatusInStock, entity.UnitStatusInStock)
	assert.False(t, ok)
}

func TestStockDelta(t *testing.T) {
	assert.Equal(t, -1, StockDelta(entity.UnitStatusInStock, entity.UnitStatusAcquired))
	assert.Equal(t, 1, StockDelta(entity.UnitStatusAcquired, entity.UnitStatusInStock))
	assert.Equal(t, 1, StockDelta(entity.UnitStatusInRepair, entity.UnitStatusInStock))
	assert.Equal(t, 0, StockDelta(entity.UnitStatusAcquired, entity.UnitStatusInRepair))
	assert.Equal(t, 0, StockDelta(entity.UnitStatusLost, entity.UnitStatusScrapped))
}

func TestAssetStatusForUnit(t *testing.T) {
	assert.Equal(t, entity.AssetStatusActive, AssetStatusForUnit(entity.UnitStatusAcquired))
	assert.Equal(t, entity.AssetStatusInStorage, AssetStatusForUnit(entity.UnitStatusInStock))
	assert.Equal(t, entity.AssetStatusInRepair, AssetStatusForUnit(entity.UnitStatusInRepair))
	assert.Equal(t, entity.AssetStatusWrittenOff, AssetStatusForUnit(entity.UnitStatusScrapped))
	assert.Equal(t, entity.AssetStatusLost, AssetStatusForUnit(entity.UnitStatusLost))
	assert.Equal(t, "", AssetStatusForUnit("OTRO"))
}

func TestIsRetireTarget(t *testing.T) {
	assert.True(t, IsRetireTarget(entity.UnitStatusInRepair))
	assert.True(t, IsRetireTarget(entity.UnitStatusScrapped))
	assert.False(t, IsRetireTarget(entity.UnitStatusAcquired))
	assert.True(t, IsUnitStatus(entity.UnitStatusLost))
	assert.False(t, IsUnitStatus("ROBADO"))
}

func TestAssetTransitions(t *testing.T) {
	assert.True(t, CanTransitionAsset(entity.AssetStatusActive, entity.AssetStatusLost))
	assert.True(t, CanTransitionAsset(entity.AssetStatusLost, entity.AssetStatusActive))
	assert.False(t, CanTransitionAsset(entity.AssetStatusWrittenOff, entity.AssetStatusActive))
	assert.False(t, CanTransitionAsset(entity.AssetStatusActive, entity.AssetStatusWrittenOff))
	assert.True(t, IsAssetClosed(entity.AssetStatusWrittenOff))
}

func TestTicketTransitions(t *testing.T) {
	assert.True(t, CanTransitionTicket(entity.TicketStatusOpen, entity.TicketStatusClosed))
	assert.True(t, CanTransitionTicket(entity.TicketStatusResolved, entity.TicketStatusInProgress))
	assert.False(t, CanTransitionTicket(entity.TicketStatusClosed, entity.TicketStatusOpen))
	assert.False(t, CanTransitionTicket(entity.TicketStatusInProgress, entity.TicketStatusClosed))
}

func TestEvaluateSLA(t *testing.T) {
	created := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	policy, ok := SLAFor(entity.TicketPriorityHigh)
	assert.True(t, ok)
	ticket := func() *entity.Ticket {
		return &entity.Ticket{
			ResponseDueAt:   created.Add(policy.Response),
			ResolutionDueAt: created.Add(policy.Resolution),
		}
	}

	// pendiente y en plazo
	s := EvaluateSLA(ticket(), created.Add(time.Hour))
	assert.False(t, s.ResponseBreached)
	assert.False(t, s.ResolutionBreached)

	// pendiente y vencido
	s = EvaluateSLA(ticket(), created.Add(25*time.Hour))
	assert.True(t, s.ResponseBreached)
	assert.True(t, s.ResolutionBreached)

	// respondido tarde pero resuelto a tiempo: el instante actual no importa
	tk := ticket()
	late := created.Add(5 * time.Hour)
	resolved := created.Add(20 * time.Hour)
	tk.FirstResponseAt, tk.ResolvedAt = &late, &resolved
	s = EvaluateSLA(tk, created.Add(1000*time.Hour))
	assert.True(t, s.ResponseBreached)
	assert.False(t, s.ResolutionBreached)

	// cerrado sin resolver después del plazo
	tk = ticket()
	closed := created.Add(30 * time.Hour)
	tk.FirstResponseAt, tk.ClosedAt = &late, &closed
	s = EvaluateSLA(tk, created.Add(31*time.Hour))
	assert.True(t, s.ResolutionBreached)

	_, ok = SLAFor("URGENTE")
	assert.False(t, ok)
}

func TestNextLevel(t *testing.T) {
	next, ok := NextLevel(entity.TicketLevel1)
	assert.True(t, ok)
	assert.Equal(t, entity.TicketLevel2, next)
	next, ok = NextLevel(entity.TicketLevel2)
	assert.True(t, ok)
	assert.Equal(t, entity.TicketLevel3, next)
	_, ok = NextLevel(entity.TicketLevel3)
	assert.False(t, ok)
}
