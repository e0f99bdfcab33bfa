package repository

import (
	"context"

	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/shared"
)

// HistoryRepository is append-only; every lifecycle transition writes
// exactly one row.
type HistoryRepository struct {
	db db.DBTX
}

func NewHistoryRepository(dbtx db.DBTX) *HistoryRepository {
	return &HistoryRepository{db: dbtx}
}

func (r *HistoryRepository) Append(ctx context.Context, entry shared.HistoryEntry) error {
	query, args, err := qb.Insert("reservation_history").
		Columns("reservation_id", "status", "note", "created_by").
		Values(entry.ReservationID, entry.Status, entry.Note, entry.CreatedBy).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build history insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append reservation history", err)
	}
	return nil
}
