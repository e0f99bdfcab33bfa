package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyStarted    = errors.New("reservation has already started")
	ErrPastDate          = errors.New("new date cannot be in the past")
	ErrReasonRequired    = errors.New("a reason is required for this action")
	ErrRescheduleLimit   = errors.New("reschedule limit reached")
	ErrRescheduleTooLate = errors.New("too close to the reservation date to reschedule")
	ErrNotAwaitingReview = errors.New("reservation is not awaiting review")
	ErrNotApproved       = errors.New("reservation is not approved")
	ErrMissingPurpose    = errors.New("purpose is required")
	ErrInvalidAttendees  = errors.New("expected attendees must be positive")
)

// ReschedulePolicy carries the externally tunable reschedule constants.
type ReschedulePolicy struct {
	MinLeadDays int
	MaxPerLife  int
}

type Reservation struct {
	id                uuid.UUID
	facilityID        uuid.UUID
	userID            uuid.UUID
	schedule          Schedule
	purpose           string
	expectedAttendees *int32
	commercial        bool
	status            Status
	autoApproved      bool
	rescheduleCount   int32
	postponedPriority bool
	postponedAt       *time.Time
	expiresAt         *time.Time
	estimatedFee      *decimal.Decimal
	createdAt         time.Time
	updatedAt         time.Time
}

// NewReservation builds the post-admission aggregate. Conflict, quota and
// auto-approval checks belong to the admission controller; only structural
// invariants live here.
func NewReservation(
	facilityID, userID uuid.UUID,
	schedule Schedule,
	purpose string,
	expectedAttendees *int32,
	commercial bool,
	status Status,
	autoApproved bool,
	expiresAt *time.Time,
	estimatedFee *decimal.Decimal,
) (*Reservation, error) {
	if purpose == "" {
		return nil, ErrMissingPurpose
	}
	if expectedAttendees != nil && *expectedAttendees <= 0 {
		return nil, ErrInvalidAttendees
	}
	if status != StatusPending && status != StatusApproved {
		return nil, ErrInvalidTransition
	}

	return &Reservation{
		id:                uuid.New(),
		facilityID:        facilityID,
		userID:            userID,
		schedule:          schedule,
		purpose:           purpose,
		expectedAttendees: expectedAttendees,
		commercial:        commercial,
		status:            status,
		autoApproved:      autoApproved,
		expiresAt:         expiresAt,
		estimatedFee:      estimatedFee,
	}, nil
}

func ReconstructReservation(
	id, facilityID, userID uuid.UUID,
	schedule Schedule,
	purpose string,
	expectedAttendees *int32,
	commercial bool,
	status Status,
	autoApproved bool,
	rescheduleCount int32,
	postponedPriority bool,
	postponedAt *time.Time,
	expiresAt *time.Time,
	estimatedFee *decimal.Decimal,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                id,
		facilityID:        facilityID,
		userID:            userID,
		schedule:          schedule,
		purpose:           purpose,
		expectedAttendees: expectedAttendees,
		commercial:        commercial,
		status:            status,
		autoApproved:      autoApproved,
		rescheduleCount:   rescheduleCount,
		postponedPriority: postponedPriority,
		postponedAt:       postponedAt,
		expiresAt:         expiresAt,
		estimatedFee:      estimatedFee,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID                  { return r.id }
func (r *Reservation) FacilityID() uuid.UUID          { return r.facilityID }
func (r *Reservation) UserID() uuid.UUID              { return r.userID }
func (r *Reservation) Schedule() Schedule             { return r.schedule }
func (r *Reservation) Purpose() string                { return r.purpose }
func (r *Reservation) ExpectedAttendees() *int32      { return r.expectedAttendees }
func (r *Reservation) Commercial() bool               { return r.commercial }
func (r *Reservation) Status() Status                 { return r.status }
func (r *Reservation) AutoApproved() bool             { return r.autoApproved }
func (r *Reservation) RescheduleCount() int32         { return r.rescheduleCount }
func (r *Reservation) PostponedPriority() bool        { return r.postponedPriority }
func (r *Reservation) PostponedAt() *time.Time        { return r.postponedAt }
func (r *Reservation) ExpiresAt() *time.Time          { return r.expiresAt }
func (r *Reservation) EstimatedFee() *decimal.Decimal { return r.estimatedFee }
func (r *Reservation) CreatedAt() time.Time           { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time           { return r.updatedAt }

// Approve moves a reviewable reservation to approved. The postponement
// timestamp is cleared; the priority flag is sticky and survives for audit.
func (r *Reservation) Approve() error {
	if !r.status.IsReviewable() {
		return ErrNotAwaitingReview
	}
	r.status = StatusApproved
	r.postponedAt = nil
	r.expiresAt = nil
	return nil
}

func (r *Reservation) Deny() error {
	if !r.status.IsReviewable() {
		return ErrNotAwaitingReview
	}
	r.status = StatusDenied
	return nil
}

// Cancel withdraws an approved reservation before it starts.
func (r *Reservation) Cancel(now time.Time, reason string) error {
	if r.status != StatusApproved {
		return ErrNotApproved
	}
	if r.schedule.HasStarted(now) {
		return ErrAlreadyStarted
	}
	if reason == "" {
		return ErrReasonRequired
	}
	r.status = StatusCancelled
	return nil
}

// Modify changes the date/slot of an approved reservation while keeping it
// approved. The caller re-checks conflicts at the new slot before persisting.
func (r *Reservation) Modify(now time.Time, newSchedule Schedule, reason string) error {
	if r.status != StatusApproved {
		return ErrNotApproved
	}
	if r.schedule.HasStarted(now) {
		return ErrAlreadyStarted
	}
	if reason == "" {
		return ErrReasonRequired
	}
	if newSchedule.DaysUntil(now) < 0 {
		return ErrPastDate
	}
	r.schedule = newSchedule
	return nil
}

// Postpone moves an approved reservation to the postponed pending-like state
// with a new date. The priority flag is set and stays set until a terminal
// state is reached.
func (r *Reservation) Postpone(now time.Time, newSchedule Schedule, reason string) error {
	if r.status != StatusApproved {
		return ErrNotApproved
	}
	if r.schedule.HasStarted(now) {
		return ErrAlreadyStarted
	}
	if reason == "" {
		return ErrReasonRequired
	}
	if newSchedule.DaysUntil(now) < 0 {
		return ErrPastDate
	}
	r.schedule = newSchedule
	r.status = StatusPostponed
	r.postponedPriority = true
	at := now
	r.postponedAt = &at
	return nil
}

// Reschedule is the resident-initiated move. An approved or postponed
// reservation drops back to pending for re-approval; a pending one keeps its
// status. Facility availability and slot conflicts are the caller's reads.
func (r *Reservation) Reschedule(now time.Time, newSchedule Schedule, reason string, policy ReschedulePolicy) error {
	if r.status != StatusPending && r.status != StatusApproved && r.status != StatusPostponed {
		return ErrInvalidTransition
	}
	if r.schedule.HasStarted(now) {
		return ErrAlreadyStarted
	}
	if reason == "" {
		return ErrReasonRequired
	}
	if int(r.rescheduleCount) >= policy.MaxPerLife {
		return ErrRescheduleLimit
	}
	if r.schedule.DaysUntil(now) < policy.MinLeadDays {
		return ErrRescheduleTooLate
	}
	if newSchedule.DaysUntil(now) < 0 {
		return ErrPastDate
	}

	r.schedule = newSchedule
	r.rescheduleCount++
	if r.status == StatusApproved || r.status == StatusPostponed {
		r.status = StatusPending
	}
	r.postponedAt = nil
	return nil
}

// Expire auto-denies a reviewable reservation whose slot has passed. It
// reports whether a change happened so the sweep stays idempotent.
func (r *Reservation) Expire(now time.Time) bool {
	if !r.status.IsReviewable() {
		return false
	}
	if !r.schedule.HasEnded(now) {
		return false
	}
	r.status = StatusDenied
	return true
}
