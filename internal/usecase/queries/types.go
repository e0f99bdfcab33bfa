package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type ReservationView struct {
	ID                uuid.UUID  `json:"id"`
	FacilityID        uuid.UUID  `json:"facility_id"`
	FacilityName      string     `json:"facility_name"`
	UserID            uuid.UUID  `json:"user_id"`
	RequesterName     string     `json:"requester_name"`
	Date              string     `json:"date"`
	TimeSlot          string     `json:"time_slot"`
	Purpose           string     `json:"purpose"`
	ExpectedAttendees *int32     `json:"expected_attendees,omitempty"`
	Commercial        bool       `json:"commercial"`
	Status            string     `json:"status"`
	AutoApproved      bool       `json:"auto_approved"`
	RescheduleCount   int32      `json:"reschedule_count"`
	PostponedPriority bool       `json:"postponed_priority"`
	EstimatedFee      *string    `json:"estimated_fee,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ReservationListItem struct {
	ID           uuid.UUID `json:"id"`
	FacilityID   uuid.UUID `json:"facility_id"`
	FacilityName string    `json:"facility_name"`
	Date         string    `json:"date"`
	TimeSlot     string    `json:"time_slot"`
	Status       string    `json:"status"`
	AutoApproved bool      `json:"auto_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewQueueItem is one row of the staff approval queue, ordered
// postponed-priority first, then oldest postponement, then FIFO.
type ReviewQueueItem struct {
	ID                uuid.UUID  `json:"id"`
	FacilityName      string     `json:"facility_name"`
	RequesterName     string     `json:"requester_name"`
	Date              string     `json:"date"`
	TimeSlot          string     `json:"time_slot"`
	Purpose           string     `json:"purpose"`
	Status            string     `json:"status"`
	PostponedPriority bool       `json:"postponed_priority"`
	PostponedAt       *time.Time `json:"postponed_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type FacilityView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Capacity          *int32    `json:"capacity,omitempty"`
	BaseRate          string    `json:"base_rate"`
	Status            string    `json:"status"`
	AutoApprove       bool      `json:"auto_approve"`
	CapacityThreshold *int32    `json:"capacity_threshold,omitempty"`
	MaxDurationHours  *float64  `json:"max_duration_hours,omitempty"`
}

// AvailabilityView is the detector result exposed to requesters before
// they submit.
type AvailabilityView struct {
	HasConflict      bool              `json:"has_conflict"`
	Message          string            `json:"message"`
	PendingCount     int               `json:"pending_count"`
	RiskScore        int               `json:"risk_score"`
	HolidayEvent     *string           `json:"holiday_event,omitempty"`
	Alternatives     []AlternativeSlot `json:"alternatives"`
	PendingConflicts int               `json:"pending_conflicts"`
}

type AlternativeSlot struct {
	TimeSlot  string `json:"time_slot"`
	Available bool   `json:"available"`
}

type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Verified bool      `json:"verified"`
	IsActive bool      `json:"is_active"`
}
