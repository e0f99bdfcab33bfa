package readstore

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/queries"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	query, args, err := qb.Select(
		"r.id", "r.facility_id", "f.name", "r.user_id", "u.name",
		"r.reservation_date", "r.start_minutes", "r.end_minutes",
		"r.purpose", "r.expected_attendees", "r.commercial", "r.status",
		"r.auto_approved", "r.reschedule_count", "r.postponed_priority",
		"r.estimated_fee::text", "r.expires_at", "r.created_at", "r.updated_at",
	).
		From("reservations r").
		Join("facilities f ON f.id = r.facility_id").
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation view select", err)
	}

	var (
		view       queries.ReservationView
		date       time.Time
		start, end int
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID, &view.FacilityID, &view.FacilityName, &view.UserID, &view.RequesterName,
		&date, &start, &end,
		&view.Purpose, &view.ExpectedAttendees, &view.Commercial, &view.Status,
		&view.AutoApproved, &view.RescheduleCount, &view.PostponedPriority,
		&view.EstimatedFee, &view.ExpiresAt, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation view", err)
	}

	view.Date = date.Format(time.DateOnly)
	view.TimeSlot = formatSlot(start, end)
	return &view, nil
}

func (r *ReservationReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	query, args, err := qb.Select(
		"r.id", "r.facility_id", "f.name", "r.reservation_date",
		"r.start_minutes", "r.end_minutes", "r.status", "r.auto_approved", "r.created_at",
	).
		From("reservations r").
		Join("facilities f ON f.id = r.facility_id").
		Where(sq.Eq{"r.user_id": userID}).
		OrderBy("r.reservation_date DESC", "r.start_minutes DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation list", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var result []*queries.ReservationListItem
	for rows.Next() {
		var (
			item       queries.ReservationListItem
			date       time.Time
			start, end int
		)
		err := rows.Scan(
			&item.ID, &item.FacilityID, &item.FacilityName, &date,
			&start, &end, &item.Status, &item.AutoApproved, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation list item", err)
		}
		item.Date = date.Format(time.DateOnly)
		item.TimeSlot = formatSlot(start, end)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return result, nil
}

// FindReviewQueue orders the staff queue: previously postponed requests
// first (oldest postponement leading), then plain FIFO on submission.
func (r *ReservationReadStore) FindReviewQueue(ctx context.Context, limit int32) ([]*queries.ReviewQueueItem, error) {
	query, args, err := qb.Select(
		"r.id", "f.name", "u.name", "r.reservation_date",
		"r.start_minutes", "r.end_minutes", "r.purpose", "r.status",
		"r.postponed_priority", "r.postponed_at", "r.expires_at", "r.created_at",
	).
		From("reservations r").
		Join("facilities f ON f.id = r.facility_id").
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"r.status": []string{
			reservation.StatusPending.String(),
			reservation.StatusPostponed.String(),
		}}).
		OrderBy("r.postponed_priority DESC", "r.postponed_at ASC NULLS LAST", "r.created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build review queue select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list review queue", err)
	}
	defer rows.Close()

	var result []*queries.ReviewQueueItem
	for rows.Next() {
		var (
			item       queries.ReviewQueueItem
			date       time.Time
			start, end int
		)
		err := rows.Scan(
			&item.ID, &item.FacilityName, &item.RequesterName, &date,
			&start, &end, &item.Purpose, &item.Status,
			&item.PostponedPriority, &item.PostponedAt, &item.ExpiresAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan review queue item", err)
		}
		item.Date = date.Format(time.DateOnly)
		item.TimeSlot = formatSlot(start, end)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate review queue", err)
	}
	return result, nil
}

func formatSlot(start, end int) string {
	slot, err := reservation.TimeSlotFromMinutes(start, end)
	if err != nil {
		return ""
	}
	return slot.String()
}
