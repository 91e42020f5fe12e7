package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo numeración correlativa sobre la tabla document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente valor. Dentro de una tx la fila queda
// bloqueada hasta el commit, así dos documentos nunca comparten número.
func (r *SequenceRepo) Next(ctx context.Context, tenantID, kind string) (int64, error) {
	query := `
		INSERT INTO document_sequences (tenant_id, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, kind)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, tenantID, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", kind, err)
	}
	return n, nil
}
