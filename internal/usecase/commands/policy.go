package commands

import (
	"errors"

	"lgu-facilities/internal/pkg/errs"
)

// Admission and lifecycle rejections. Handlers map these to HTTP
// statuses with errors.Is.
var (
	ErrValidation          = errs.New("validation failed")
	ErrFacilityNotFound    = errs.New("facility not found")
	ErrFacilityUnavailable = errs.New("facility unavailable")
	ErrPastDate            = errs.New("date is in the past")
	ErrAdvanceWindow       = errs.New("date outside advance booking window")
	ErrQuotaExceeded       = errs.New("active reservation quota exceeded")
	ErrPerDayLimit         = errs.New("per-day reservation limit reached")
	ErrConflict            = errs.New("reservation conflict")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrNotOwner            = errs.New("not the reservation owner")
	ErrTransition          = errs.New("invalid lifecycle transition")
)

// PolicyError pairs a sentinel with the actionable reason shown to the
// requester. errors.Is matches the sentinel; Reason survives to the
// response body.
type PolicyError struct {
	sentinel error
	Reason   string
}

func (e *PolicyError) Error() string {
	return e.sentinel.Error() + ": " + e.Reason
}

func (e *PolicyError) Is(target error) bool {
	return errors.Is(e.sentinel, target)
}

func (e *PolicyError) Unwrap() error {
	return e.sentinel
}

func NewPolicyError(sentinel error, reason string) *PolicyError {
	return &PolicyError{sentinel: sentinel, Reason: reason}
}

func reject(sentinel error, reason string) error {
	return NewPolicyError(sentinel, reason)
}

// RejectionReason extracts the requester-facing message, falling back
// to the plain error text.
func RejectionReason(err error) string {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return err.Error()
}
