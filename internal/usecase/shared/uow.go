package shared

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/infra/db"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: validation reads outside an explicit transaction
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	History() HistoryRepository
	Notifications() NotificationRepository
	Audit() AuditRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads covers the lookups the admission and lifecycle commands
// need before deciding anything.
type CommandReads interface {
	FacilityByID(ctx context.Context, id uuid.UUID) (*FacilitySnapshot, error)
	UserByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	StaffRecipients(ctx context.Context) ([]UserSnapshot, error)

	// Conflict detector inputs for one facility/date, optionally
	// excluding the reservation being moved.
	ApprovedBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, exclude *uuid.UUID) ([]conflict.Booking, error)
	PendingBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, now time.Time, exclude *uuid.UUID) ([]conflict.Booking, error)
	HistoricalBookingCount(ctx context.Context, facilityID uuid.UUID, weekday time.Weekday, slot reservation.TimeSlot, since time.Time) (int, error)
	BlackoutReason(ctx context.Context, facilityID uuid.UUID, date time.Time) (*string, error)

	// Quota reads over the requester's active reservations.
	ActiveCountInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	ActiveCountOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (int, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error)
	// FindByID loads the row FOR UPDATE so lifecycle transitions are
	// serialized per reservation.
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	Save(ctx context.Context, res *reservation.Reservation) error
	// ListOverdue returns reviewable reservations whose slot has passed.
	ListOverdue(ctx context.Context, now time.Time, limit int32) ([]*reservation.Reservation, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
}

type NotificationRepository interface {
	Create(ctx context.Context, rec NotificationRecord) error
}

type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
}
