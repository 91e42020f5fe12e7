package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

const assetColumns = `id, tenant_id, unit_id, product_id, asset_tag, status, service_id, location, custodian_id, created_at, updated_at`

// AssetRepo implementación de AssetRepository sobre PostgreSQL.
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

// Create inserta el bien. Una unidad tiene como máximo un bien (unit_id único).
func (r *AssetRepo) Create(ctx context.Context, a *entity.MunicipalAsset) error {
	query := `
		INSERT INTO municipal_assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.TenantID, a.UnitID, a.ProductID, a.AssetTag, a.Status,
		nullable(a.ServiceID), a.Location, nullable(a.CustodianID), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert municipal asset: %w", err)
	}
	return nil
}

// GetByID obtiene un bien por ID.
func (r *AssetRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.MunicipalAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM municipal_assets WHERE tenant_id = $1 AND id = $2`
	return scanAsset(r.q.QueryRow(ctx, query, tenantID, id))
}

// GetByUnit obtiene el bien derivado de una unidad.
func (r *AssetRepo) GetByUnit(ctx context.Context, tenantID, unitID string) (*entity.MunicipalAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM municipal_assets WHERE tenant_id = $1 AND unit_id = $2`
	return scanAsset(r.q.QueryRow(ctx, query, tenantID, unitID))
}

// List lista bienes con filtros.
func (r *AssetRepo) List(ctx context.Context, tenantID string, f entity.AssetFilter) ([]*entity.MunicipalAsset, error) {
	query := `
		SELECT ` + assetColumns + ` FROM municipal_assets
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR service_id::text = $3)
		  AND ($4 = '' OR custodian_id::text = $4)
		ORDER BY asset_tag
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, f.Status, f.ServiceID, f.CustodianID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list municipal assets: %w", err)
	}
	defer rows.Close()
	var list []*entity.MunicipalAsset
	for rows.Next() {
		a, err := scanAssetRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// UpdateStatus cambio condicional de estado.
func (r *AssetRepo) UpdateStatus(ctx context.Context, tenantID, id string, from []string, to string, at time.Time) error {
	query := `
		UPDATE municipal_assets SET status = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2 AND status = ANY($3)`
	tag, err := r.q.Exec(ctx, query, tenantID, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update municipal asset status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// UpdatePlacement guarda dependencia, ubicación y custodio si el bien no está dado de baja.
func (r *AssetRepo) UpdatePlacement(ctx context.Context, a *entity.MunicipalAsset) error {
	query := `
		UPDATE municipal_assets SET service_id = $3, location = $4, custodian_id = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2 AND status <> 'WRITTEN_OFF'`
	tag, err := r.q.Exec(ctx, query, a.TenantID, a.ID, nullable(a.ServiceID), a.Location, nullable(a.CustodianID), a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update municipal asset placement: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// AppendEvent inserta un evento de estado.
func (r *AssetRepo) AppendEvent(ctx context.Context, ev *entity.MunicipalAssetEvent) error {
	query := `
		INSERT INTO municipal_asset_events (id, tenant_id, asset_id, kind, from_status, to_status, request_id, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, ev.ID, ev.TenantID, ev.AssetID, ev.Kind, ev.FromStatus, ev.ToStatus,
		nullable(ev.RequestID), ev.ActorID, ev.Note, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert municipal asset event: %w", err)
	}
	return nil
}

// AppendMovement inserta un movimiento de ubicación o custodia.
func (r *AssetRepo) AppendMovement(ctx context.Context, mv *entity.MunicipalAssetMovement) error {
	query := `
		INSERT INTO municipal_asset_movements (id, tenant_id, asset_id, kind, from_location, to_location,
			from_service_id, to_service_id, from_custodian, to_custodian, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, mv.ID, mv.TenantID, mv.AssetID, mv.Kind, mv.FromLocation, mv.ToLocation,
		nullable(mv.FromServiceID), nullable(mv.ToServiceID), nullable(mv.FromCustodian), nullable(mv.ToCustodian),
		mv.ActorID, mv.Note, mv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert municipal asset movement: %w", err)
	}
	return nil
}

// ListEvents historial de estados en orden cronológico.
func (r *AssetRepo) ListEvents(ctx context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetEvent, error) {
	query := `
		SELECT id, tenant_id, asset_id, kind, from_status, to_status, request_id, actor_id, note, created_at
		FROM municipal_asset_events WHERE tenant_id = $1 AND asset_id = $2 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, assetID)
	if err != nil {
		return nil, fmt.Errorf("list municipal asset events: %w", err)
	}
	defer rows.Close()
	var list []*entity.MunicipalAssetEvent
	for rows.Next() {
		var (
			ev        entity.MunicipalAssetEvent
			requestID *string
		)
		if err := rows.Scan(&ev.ID, &ev.TenantID, &ev.AssetID, &ev.Kind, &ev.FromStatus, &ev.ToStatus,
			&requestID, &ev.ActorID, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.RequestID = deref(requestID)
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// ListMovements historial de ubicación y custodia en orden cronológico.
func (r *AssetRepo) ListMovements(ctx context.Context, tenantID, assetID string) ([]*entity.MunicipalAssetMovement, error) {
	query := `
		SELECT id, tenant_id, asset_id, kind, from_location, to_location,
			from_service_id, to_service_id, from_custodian, to_custodian, actor_id, note, created_at
		FROM municipal_asset_movements WHERE tenant_id = $1 AND asset_id = $2 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, assetID)
	if err != nil {
		return nil, fmt.Errorf("list municipal asset movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MunicipalAssetMovement
	for rows.Next() {
		var (
			mv                                    entity.MunicipalAssetMovement
			fromSvc, toSvc, fromCust, toCustodian *string
		)
		if err := rows.Scan(&mv.ID, &mv.TenantID, &mv.AssetID, &mv.Kind, &mv.FromLocation, &mv.ToLocation,
			&fromSvc, &toSvc, &fromCust, &toCustodian, &mv.ActorID, &mv.Note, &mv.CreatedAt); err != nil {
			return nil, err
		}
		mv.FromServiceID, mv.ToServiceID = deref(fromSvc), deref(toSvc)
		mv.FromCustodian, mv.ToCustodian = deref(fromCust), deref(toCustodian)
		list = append(list, &mv)
	}
	return list, rows.Err()
}

func scanAsset(row pgx.Row) (*entity.MunicipalAsset, error) {
	a, err := scanAssetRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get municipal asset: %w", err)
	}
	return a, nil
}

func scanAssetRow(row pgx.Row) (*entity.MunicipalAsset, error) {
	var (
		a                      entity.MunicipalAsset
		serviceID, custodianID *string
	)
	if err := row.Scan(&a.ID, &a.TenantID, &a.UnitID, &a.ProductID, &a.AssetTag, &a.Status,
		&serviceID, &a.Location, &custodianID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ServiceID, a.CustodianID = deref(serviceID), deref(custodianID)
	return &a, nil
}
