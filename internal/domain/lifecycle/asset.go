package lifecycle

import "github.com/jhoicas/municipal-ops-api/internal/domain/entity"

// Transiciones manuales del bien (las derivadas de la unidad usan AssetStatusForUnit).
var assetTransitions = map[string][]string{
	entity.AssetStatusActive:    {entity.AssetStatusInStorage, entity.AssetStatusLost},
	entity.AssetStatusInStorage: {entity.AssetStatusActive, entity.AssetStatusLost},
	entity.AssetStatusLost:      {entity.AssetStatusActive, entity.AssetStatusInStorage},
}

// CanTransitionAsset informa si el bien puede pasar manualmente de from a to.
func CanTransitionAsset(from, to string) bool {
	return contains(assetTransitions[from], to)
}

// IsAssetClosed un bien dado de baja no admite cambios.
func IsAssetClosed(status string) bool {
	return status == entity.AssetStatusWrittenOff
}
