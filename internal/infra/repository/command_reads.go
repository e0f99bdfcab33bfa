package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/facility"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/shared"
)

// CommandReads serves the validation lookups commands run before and
// inside their transactions.
type CommandReads struct {
	db db.DBTX
}

func NewCommandReads(dbtx db.DBTX) *CommandReads {
	return &CommandReads{db: dbtx}
}

func (r *CommandReads) FacilityByID(ctx context.Context, id uuid.UUID) (*shared.FacilitySnapshot, error) {
	query, args, err := qb.Select(
		"id", "name", "status", "capacity", "base_rate::text",
		"auto_approve", "capacity_threshold", "max_duration_hours::float8",
	).
		From("facilities").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build facility select", err)
	}

	var (
		snap     shared.FacilitySnapshot
		status   string
		baseRate string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID, &snap.Name, &status, &snap.Capacity, &baseRate,
		&snap.AutoApprove, &snap.CapacityThreshold, &snap.MaxDurationHours,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("facility not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find facility by ID", err)
	}

	snap.Status, err = facility.NewStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid facility status", err)
	}
	snap.BaseRate, err = decimal.NewFromString(baseRate)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid facility base rate", err)
	}
	return &snap, nil
}

func (r *CommandReads) UserByID(ctx context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	return r.findUser(ctx, sq.Eq{"id": id})
}

func (r *CommandReads) findUser(ctx context.Context, pred any) (*shared.UserSnapshot, error) {
	query, args, err := qb.Select("id", "name", "email", "role", "verified", "active").
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build user select", err)
	}

	var (
		snap shared.UserSnapshot
		role string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID, &snap.Name, &snap.Email, &role, &snap.Verified, &snap.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	snap.Role, err = user.NewRole(role)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid user role", err)
	}
	return &snap, nil
}

// StaffRecipients lists active staff and admin users for pending-review
// notification fan-out.
func (r *CommandReads) StaffRecipients(ctx context.Context) ([]shared.UserSnapshot, error) {
	query, args, err := qb.Select("id", "name", "email", "role", "verified", "active").
		From("users").
		Where(sq.Eq{"role": []string{user.RoleStaff.String(), user.RoleAdmin.String()}}).
		Where(sq.Eq{"active": true}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build staff select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list staff recipients", err)
	}
	defer rows.Close()

	var result []shared.UserSnapshot
	for rows.Next() {
		var (
			snap shared.UserSnapshot
			role string
		)
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Email, &role, &snap.Verified, &snap.Active); err != nil {
			return nil, infra.WrapRepoErr("failed to scan staff recipient", err)
		}
		snap.Role, err = user.NewRole(role)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid user role", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate staff recipients", err)
	}
	return result, nil
}

func (r *CommandReads) ApprovedBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, exclude *uuid.UUID) ([]conflict.Booking, error) {
	pred := sq.And{
		sq.Eq{"facility_id": facilityID},
		sq.Eq{"reservation_date": date},
		sq.Eq{"status": reservation.StatusApproved.String()},
	}
	return r.listBookings(ctx, pred, exclude)
}

// PendingBookings excludes pending holds whose expires_at has lapsed.
func (r *CommandReads) PendingBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, now time.Time, exclude *uuid.UUID) ([]conflict.Booking, error) {
	pred := sq.And{
		sq.Eq{"facility_id": facilityID},
		sq.Eq{"reservation_date": date},
		sq.Eq{"status": reservation.StatusPending.String()},
		sq.Or{
			sq.Eq{"expires_at": nil},
			sq.Gt{"expires_at": now},
		},
	}
	return r.listBookings(ctx, pred, exclude)
}

func (r *CommandReads) listBookings(ctx context.Context, pred sq.And, exclude *uuid.UUID) ([]conflict.Booking, error) {
	if exclude != nil {
		pred = append(pred, sq.NotEq{"id": *exclude})
	}

	query, args, err := qb.Select("id", "start_minutes", "end_minutes").
		From(reservationTable).
		Where(pred).
		OrderBy("start_minutes ASC").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build bookings select", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []conflict.Booking
	for rows.Next() {
		var (
			id         uuid.UUID
			start, end int
		)
		if err := rows.Scan(&id, &start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		slot, err := reservation.TimeSlotFromMinutes(start, end)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid stored time slot", err)
		}
		result = append(result, conflict.Booking{ID: id, Slot: slot})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return result, nil
}

// HistoricalBookingCount counts approved bookings for the same weekday
// and exact slot since the given date. Feeds the risk score.
func (r *CommandReads) HistoricalBookingCount(ctx context.Context, facilityID uuid.UUID, weekday time.Weekday, slot reservation.TimeSlot, since time.Time) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(reservationTable).
		Where(sq.Eq{"facility_id": facilityID}).
		Where(sq.Eq{"status": reservation.StatusApproved.String()}).
		Where(sq.Expr("extract(dow from reservation_date) = ?", int(weekday))).
		Where(sq.Eq{"start_minutes": slot.StartMinutes()}).
		Where(sq.Eq{"end_minutes": slot.EndMinutes()}).
		Where(sq.GtOrEq{"reservation_date": since}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build historical count", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count historical bookings", err)
	}
	return count, nil
}

func (r *CommandReads) BlackoutReason(ctx context.Context, facilityID uuid.UUID, date time.Time) (*string, error) {
	query, args, err := qb.Select("coalesce(reason, 'No reason specified')").
		From("facility_blackout_dates").
		Where(sq.Eq{"facility_id": facilityID}).
		Where(sq.Eq{"blackout_date": date}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build blackout select", err)
	}

	var reason string
	err = r.db.QueryRow(ctx, query, args...).Scan(&reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to check blackout date", err)
	}
	return &reason, nil
}

func (r *CommandReads) ActiveCountInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(reservationTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": []string{
			reservation.StatusPending.String(),
			reservation.StatusApproved.String(),
		}}).
		Where(sq.GtOrEq{"reservation_date": from}).
		Where(sq.LtOrEq{"reservation_date": to}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build window count", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations in window", err)
	}
	return count, nil
}

func (r *CommandReads) ActiveCountOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(reservationTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": []string{
			reservation.StatusPending.String(),
			reservation.StatusApproved.String(),
		}}).
		Where(sq.Eq{"reservation_date": date}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build per-day count", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations on date", err)
	}
	return count, nil
}
