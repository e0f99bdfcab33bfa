//go:build unit

package commands_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/usecase/shared"
)

// In-memory doubles for the unit-of-work surface. Command tests assert
// on the rows they capture instead of hitting Postgres.

type fakeReads struct {
	facility     *shared.FacilitySnapshot
	requester    *shared.UserSnapshot
	staff        []shared.UserSnapshot
	approved     []conflict.Booking
	pending      []conflict.Booking
	historical   int
	blackout     *string
	activeWindow int
	activeOnDate int
}

func (r *fakeReads) FacilityByID(_ context.Context, _ uuid.UUID) (*shared.FacilitySnapshot, error) {
	if r.facility == nil {
		return nil, infra.WrapRepoErr("facility not found", errors.New("no rows"), infra.KindNotFound)
	}
	return r.facility, nil
}

func (r *fakeReads) UserByID(_ context.Context, _ uuid.UUID) (*shared.UserSnapshot, error) {
	if r.requester == nil {
		return nil, infra.WrapRepoErr("user not found", errors.New("no rows"), infra.KindNotFound)
	}
	return r.requester, nil
}

func (r *fakeReads) StaffRecipients(_ context.Context) ([]shared.UserSnapshot, error) {
	return r.staff, nil
}

func (r *fakeReads) ApprovedBookings(_ context.Context, _ uuid.UUID, _ time.Time, exclude *uuid.UUID) ([]conflict.Booking, error) {
	return excludeBooking(r.approved, exclude), nil
}

func (r *fakeReads) PendingBookings(_ context.Context, _ uuid.UUID, _ time.Time, _ time.Time, exclude *uuid.UUID) ([]conflict.Booking, error) {
	return excludeBooking(r.pending, exclude), nil
}

func (r *fakeReads) HistoricalBookingCount(_ context.Context, _ uuid.UUID, _ time.Weekday, _ reservation.TimeSlot, _ time.Time) (int, error) {
	return r.historical, nil
}

func (r *fakeReads) BlackoutReason(_ context.Context, _ uuid.UUID, _ time.Time) (*string, error) {
	return r.blackout, nil
}

func (r *fakeReads) ActiveCountInWindow(_ context.Context, _ uuid.UUID, _, _ time.Time) (int, error) {
	return r.activeWindow, nil
}

func (r *fakeReads) ActiveCountOnDate(_ context.Context, _ uuid.UUID, _ time.Time) (int, error) {
	return r.activeOnDate, nil
}

func excludeBooking(in []conflict.Booking, exclude *uuid.UUID) []conflict.Booking {
	if exclude == nil {
		return in
	}
	out := make([]conflict.Booking, 0, len(in))
	for _, b := range in {
		if b.ID != *exclude {
			out = append(out, b)
		}
	}
	return out
}

type fakeReservationRepo struct {
	byID      map[uuid.UUID]*reservation.Reservation
	created   []*reservation.Reservation
	createErr error
	saved     []*reservation.Reservation
	saveErr   error
	overdue   []*reservation.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{byID: map[uuid.UUID]*reservation.Reservation{}}
}

func (r *fakeReservationRepo) Create(_ context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.created = append(r.created, res)
	r.byID[res.ID()] = res
	return res.ID(), nil
}

func (r *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", errors.New("no rows"), infra.KindNotFound)
	}
	return res, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, res *reservation.Reservation) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, res)
	r.byID[res.ID()] = res
	return nil
}

func (r *fakeReservationRepo) ListOverdue(_ context.Context, _ time.Time, _ int32) ([]*reservation.Reservation, error) {
	return r.overdue, nil
}

type fakeHistoryRepo struct {
	entries []shared.HistoryEntry
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry shared.HistoryEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fakeNotificationRepo struct {
	records []shared.NotificationRecord
}

func (r *fakeNotificationRepo) Create(_ context.Context, rec shared.NotificationRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeNotificationRepo) titles() []string {
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Title
	}
	return out
}

type fakeAuditRepo struct {
	entries []shared.AuditEntry
}

func (r *fakeAuditRepo) Append(_ context.Context, entry shared.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fakeTx struct {
	reservations *fakeReservationRepo
	history      *fakeHistoryRepo
	notifs       *fakeNotificationRepo
	audit        *fakeAuditRepo
	reads        *fakeReads
}

func (t *fakeTx) Reservations() shared.ReservationRepository   { return t.reservations }
func (t *fakeTx) History() shared.HistoryRepository            { return t.history }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifs }
func (t *fakeTx) Audit() shared.AuditRepository                { return t.audit }
func (t *fakeTx) Reads() shared.CommandReads                   { return t.reads }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type fakeUoW struct {
	tx *fakeTx
}

func newFakeUoW(reads *fakeReads) *fakeUoW {
	return &fakeUoW{tx: &fakeTx{
		reservations: newFakeReservationRepo(),
		history:      &fakeHistoryRepo{},
		notifs:       &fakeNotificationRepo{},
		audit:        &fakeAuditRepo{},
		reads:        reads,
	}}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return u.tx.reads
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(to, _ string, subject, _ string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

// conflictRepoErr mimics the error the repository returns when the
// partial unique index rejects a duplicate live slot.
func conflictRepoErr() error {
	return infra.WrapRepoErr("create reservation", errors.New("duplicate key value violates unique constraint"), infra.KindConflict)
}
