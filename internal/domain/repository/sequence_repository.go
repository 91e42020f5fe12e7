package repository

import "context"

// SequenceRepository numeración correlativa por tenant y tipo de documento.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (empieza en 1).
	Next(ctx context.Context, tenantID, kind string) (int64, error)
}
