// Package approval decides whether a booking may bypass manual staff
// review. The evaluator is pure; callers supply every fact it needs.
package approval

import (
	"fmt"
	"time"

	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/domain/user"
)

// Check records the outcome of one auto-approval condition.
type Check struct {
	Name    string
	Passed  bool
	Message string
}

type Decision struct {
	AutoApprove bool
	Reason      string
	Checks      []Check
}

// Input is the full fact set for one evaluation. BlackoutReason is nil
// when the date is not blacked out. ConflictDetected reflects the
// detector's hard-conflict verdict for the same request.
type Input struct {
	Requester         user.Actor
	Verified          bool
	Commercial        bool
	Slot              reservation.TimeSlot
	DaysAhead         int
	MaxAdvanceDays    int
	MaxDuration       time.Duration
	FacilityMaxHours  *float64
	ExpectedAttendees *int32
	CapacityThreshold *int32
	FacilityAllows    bool
	FacilityAvailable bool
	BlackoutReason    *string
	ConflictDetected  bool
}

// Evaluate runs every condition in order and returns the aggregate
// verdict. All checks run even after a failure so the caller can show
// the complete condition list; the first failure supplies Reason.
func Evaluate(in Input) Decision {
	var checks []Check
	add := func(name string, passed bool, message string) {
		checks = append(checks, Check{Name: name, Passed: passed, Message: message})
	}

	verified := in.Verified || in.Requester.Role.Privileged()
	msg := "Requester is verified"
	if !verified {
		msg = "Requester is not ID-verified"
	}
	add("requester_verified", verified, msg)

	msg = "Facility allows auto-approval"
	if !in.FacilityAllows {
		msg = "Facility requires manual approval"
	}
	add("facility_auto_approve_enabled", in.FacilityAllows, msg)

	msg = "Reservation is for non-commercial purposes"
	if in.Commercial {
		msg = "Commercial reservations require manual approval"
	}
	add("non_commercial", !in.Commercial, msg)

	limit := in.MaxDuration
	if in.FacilityMaxHours != nil {
		facilityLimit := time.Duration(*in.FacilityMaxHours * float64(time.Hour))
		if facilityLimit < limit {
			limit = facilityLimit
		}
	}
	durationOK := in.Slot.Duration() <= limit
	msg = fmt.Sprintf("Reservation duration (%.1fh) is within limit (%.1fh)", in.Slot.Duration().Hours(), limit.Hours())
	if !durationOK {
		msg = fmt.Sprintf("Reservation duration (%.1fh) exceeds limit (%.1fh)", in.Slot.Duration().Hours(), limit.Hours())
	}
	add("duration_within_limit", durationOK, msg)

	attendeesOK := true
	switch {
	case in.CapacityThreshold == nil:
		msg = "No capacity threshold set for this facility"
	case in.ExpectedAttendees == nil:
		msg = "Expected attendees not specified"
	case *in.ExpectedAttendees > *in.CapacityThreshold:
		attendeesOK = false
		msg = fmt.Sprintf("Expected attendees (%d) exceeds capacity threshold (%d)", *in.ExpectedAttendees, *in.CapacityThreshold)
	default:
		msg = fmt.Sprintf("Expected attendees (%d) within capacity threshold (%d)", *in.ExpectedAttendees, *in.CapacityThreshold)
	}
	add("attendees_within_capacity", attendeesOK, msg)

	blackedOut := in.BlackoutReason != nil
	msg = "Reservation date is not blacked out"
	if blackedOut {
		msg = "Reservation date is in blackout period: " + *in.BlackoutReason
	}
	add("not_in_blackout", !blackedOut, msg)

	clear := !in.ConflictDetected && in.FacilityAvailable
	msg = "No conflicts with existing approved reservations"
	if in.ConflictDetected {
		msg = "Conflicts with existing approved reservation"
	} else if !in.FacilityAvailable {
		msg = "Facility is not available"
	}
	add("no_conflict", clear, msg)

	withinWindow := in.DaysAhead >= 0 && in.DaysAhead <= in.MaxAdvanceDays
	msg = fmt.Sprintf("Reservation date is within advance booking window (%d days)", in.MaxAdvanceDays)
	if !withinWindow {
		msg = fmt.Sprintf("Reservation date is outside advance booking window (%d days)", in.MaxAdvanceDays)
	}
	add("within_advance_window", withinWindow, msg)

	decision := Decision{AutoApprove: true, Checks: checks}
	for _, c := range checks {
		if !c.Passed {
			decision.AutoApprove = false
			decision.Reason = c.Message
			break
		}
	}
	if decision.AutoApprove {
		decision.Reason = "All conditions met for auto-approval"
	}
	return decision
}
