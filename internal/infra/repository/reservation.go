package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
)

const reservationTable = "reservations"

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var reservationColumns = []string{
	"id", "facility_id", "user_id", "reservation_date", "start_minutes", "end_minutes",
	"purpose", "expected_attendees", "commercial", "status", "auto_approved",
	"reschedule_count", "postponed_priority", "postponed_at", "expires_at",
	"estimated_fee::text", "created_at", "updated_at",
}

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	var fee *string
	if res.EstimatedFee() != nil {
		s := res.EstimatedFee().StringFixed(2)
		fee = &s
	}

	query, args, err := qb.Insert(reservationTable).
		Columns(
			"id", "facility_id", "user_id", "reservation_date", "start_minutes", "end_minutes",
			"purpose", "expected_attendees", "commercial", "status", "auto_approved",
			"expires_at", "estimated_fee",
		).
		Values(
			res.ID(), res.FacilityID(), res.UserID(),
			res.Schedule().Date(), res.Schedule().Slot().StartMinutes(), res.Schedule().Slot().EndMinutes(),
			res.Purpose(), res.ExpectedAttendees(), res.Commercial(), res.Status().String(), res.AutoApproved(),
			res.ExpiresAt(), fee,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build reservation insert", err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, infra.WrapRepoErr("slot already taken by a live reservation", err, infra.KindConflict)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}
	return id, nil
}

// FindByID locks the row so concurrent lifecycle transitions serialize.
func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation select", err)
	}

	res, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return res, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	var fee *string
	if res.EstimatedFee() != nil {
		s := res.EstimatedFee().StringFixed(2)
		fee = &s
	}

	query, args, err := qb.Update(reservationTable).
		Set("reservation_date", res.Schedule().Date()).
		Set("start_minutes", res.Schedule().Slot().StartMinutes()).
		Set("end_minutes", res.Schedule().Slot().EndMinutes()).
		Set("status", res.Status().String()).
		Set("auto_approved", res.AutoApproved()).
		Set("reschedule_count", res.RescheduleCount()).
		Set("postponed_priority", res.PostponedPriority()).
		Set("postponed_at", res.PostponedAt()).
		Set("expires_at", res.ExpiresAt()).
		Set("estimated_fee", fee).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": res.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build reservation update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return infra.WrapRepoErr("slot already taken by a live reservation", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to save reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

// ListOverdue fetches reviewable reservations whose slot has already
// ended, locking them for the expiry sweep.
func (r *ReservationRepository) ListOverdue(ctx context.Context, now time.Time, limit int32) ([]*reservation.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTable).
		Where(sq.Eq{"status": []string{
			reservation.StatusPending.String(),
			reservation.StatusPostponed.String(),
		}}).
		Where(sq.Expr(
			"reservation_date + make_interval(mins => end_minutes) <= ?",
			now,
		)).
		OrderBy("reservation_date ASC", "end_minutes ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build overdue select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list overdue reservations", err)
	}
	defer rows.Close()

	var result []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan overdue reservation", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate overdue reservations", err)
	}
	return result, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, facilityID, userID   uuid.UUID
		date                     time.Time
		startMinutes, endMinutes int
		purpose                  string
		expectedAttendees        *int32
		commercial, autoApproved bool
		status                   string
		rescheduleCount          int32
		postponedPriority        bool
		postponedAt, expiresAt   *time.Time
		fee                      *string
		createdAt, updatedAt     time.Time
	)

	err := row.Scan(
		&id, &facilityID, &userID, &date, &startMinutes, &endMinutes,
		&purpose, &expectedAttendees, &commercial, &status, &autoApproved,
		&rescheduleCount, &postponedPriority, &postponedAt, &expiresAt,
		&fee, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot, err := reservation.TimeSlotFromMinutes(startMinutes, endMinutes)
	if err != nil {
		return nil, err
	}
	st, err := reservation.NewStatus(status)
	if err != nil {
		return nil, err
	}

	var estimatedFee *decimal.Decimal
	if fee != nil {
		d, err := decimal.NewFromString(*fee)
		if err != nil {
			return nil, err
		}
		estimatedFee = &d
	}

	return reservation.ReconstructReservation(
		id, facilityID, userID,
		reservation.NewSchedule(date, slot),
		purpose, expectedAttendees, commercial,
		st, autoApproved, rescheduleCount,
		postponedPriority, postponedAt, expiresAt,
		estimatedFee, createdAt, updatedAt,
	), nil
}
