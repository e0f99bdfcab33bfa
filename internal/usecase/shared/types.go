package shared

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lgu-facilities/internal/domain/facility"
	"lgu-facilities/internal/domain/user"
)

// Minimal snapshots for command read operations

type FacilitySnapshot struct {
	ID                uuid.UUID
	Name              string
	Status            facility.Status
	Capacity          *int32
	BaseRate          decimal.Decimal
	AutoApprove       bool
	CapacityThreshold *int32
	MaxDurationHours  *float64
}

func (f *FacilitySnapshot) Bookable() bool {
	return f.Status == facility.StatusAvailable
}

type UserSnapshot struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Role     user.Role
	Verified bool
	Active   bool
}

// HistoryEntry mirrors one reservation_history row: the status the
// reservation landed in plus a human-readable note. CreatedBy is nil
// for system actions such as the expiry sweep.
type HistoryEntry struct {
	ReservationID uuid.UUID
	Status        string
	Note          string
	CreatedBy     *uuid.UUID
}

type NotificationRecord struct {
	UserID  uuid.UUID
	Type    string
	Title   string
	Message string
	Link    *string
}

type AuditEntry struct {
	UserID    *uuid.UUID
	Action    string
	Module    string
	Details   string
	IPAddress *string
	UserAgent *string
}
