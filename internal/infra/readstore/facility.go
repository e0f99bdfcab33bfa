package readstore

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/queries"
)

var facilityViewColumns = []string{
	"id", "name", "capacity", "base_rate::text", "status",
	"auto_approve", "capacity_threshold", "max_duration_hours::float8",
}

type FacilityReadStore struct {
	db db.DBTX
}

func NewFacilityReadStore(dbtx db.DBTX) *FacilityReadStore {
	return &FacilityReadStore{db: dbtx}
}

func (r *FacilityReadStore) List(ctx context.Context) ([]*queries.FacilityView, error) {
	query, args, err := qb.Select(facilityViewColumns...).
		From("facilities").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build facility list", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list facilities", err)
	}
	defer rows.Close()

	var result []*queries.FacilityView
	for rows.Next() {
		view, err := scanFacilityView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan facility", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate facilities", err)
	}
	return result, nil
}

func (r *FacilityReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.FacilityView, error) {
	query, args, err := qb.Select(facilityViewColumns...).
		From("facilities").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build facility select", err)
	}

	view, err := scanFacilityView(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("facility not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find facility by ID", err)
	}
	return view, nil
}

func scanFacilityView(row pgx.Row) (*queries.FacilityView, error) {
	var view queries.FacilityView
	err := row.Scan(
		&view.ID, &view.Name, &view.Capacity, &view.BaseRate, &view.Status,
		&view.AutoApprove, &view.CapacityThreshold, &view.MaxDurationHours,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}
