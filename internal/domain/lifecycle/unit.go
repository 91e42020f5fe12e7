package lifecycle

import "github.com/jhoicas/municipal-ops-api/internal/domain/entity"

// unitTransitions: origen → destino → tipo de movimiento que se registra.
var unitTransitions = map[string]map[string]string{
	entity.UnitStatusInStock: {
		entity.UnitStatusAcquired: entity.MovementTypeOut,
		entity.UnitStatusInRepair: entity.MovementTypeRepairOut,
		entity.UnitStatusScrapped: entity.MovementTypeScrap,
		entity.UnitStatusLost:     entity.MovementTypeLost,
	},
	entity.UnitStatusAcquired: {
		entity.UnitStatusInStock:  entity.MovementTypeReturn,
		entity.UnitStatusInRepair: entity.MovementTypeRepairOut,
		entity.UnitStatusScrapped: entity.MovementTypeScrap,
		entity.UnitStatusLost:     entity.MovementTypeLost,
	},
	entity.UnitStatusInRepair: {
		entity.UnitStatusInStock:  entity.MovementTypeRepairIn,
		entity.UnitStatusAcquired: entity.MovementTypeRepairIn,
		entity.UnitStatusScrapped: entity.MovementTypeScrap,
		entity.UnitStatusLost:     entity.MovementTypeLost,
	},
	entity.UnitStatusLost: {
		entity.UnitStatusInStock:  entity.MovementTypeReturn,
		entity.UnitStatusScrapped: entity.MovementTypeScrap,
	},
}

// UnitMovementType devuelve el tipo de movimiento de la transición from→to
// y false si la transición no es legal.
func UnitMovementType(from, to string) (string, bool) {
	mt, ok := unitTransitions[from][to]
	return mt, ok
}

// StockDelta variación del saldo en almacén al pasar de from a to (+1 entra, -1 sale).
func StockDelta(from, to string) int {
	switch {
	case from != entity.UnitStatusInStock && to == entity.UnitStatusInStock:
		return 1
	case from == entity.UnitStatusInStock && to != entity.UnitStatusInStock:
		return -1
	}
	return 0
}

// AssetStatusForUnit estado patrimonial que corresponde al estado de la unidad.
func AssetStatusForUnit(unitStatus string) string {
	switch unitStatus {
	case entity.UnitStatusAcquired:
		return entity.AssetStatusActive
	case entity.UnitStatusInStock:
		return entity.AssetStatusInStorage
	case entity.UnitStatusInRepair:
		return entity.AssetStatusInRepair
	case entity.UnitStatusScrapped:
		return entity.AssetStatusWrittenOff
	case entity.UnitStatusLost:
		return entity.AssetStatusLost
	}
	return ""
}

// IsRetireTarget informa si to es un destino válido para la unidad retirada en una sustitución.
func IsRetireTarget(to string) bool {
	switch to {
	case entity.UnitStatusInStock, entity.UnitStatusInRepair, entity.UnitStatusScrapped, entity.UnitStatusLost:
		return true
	}
	return false
}

// IsUnitStatus valida el enum.
func IsUnitStatus(s string) bool {
	return contains(unitStatuses, s)
}

var unitStatuses = []string{
	entity.UnitStatusInStock,
	entity.UnitStatusAcquired,
	entity.UnitStatusInRepair,
	entity.UnitStatusScrapped,
	entity.UnitStatusLost,
}
