// Package conflict detects overlapping bookings for a facility on a
// given date and scores the demand risk of the requested slot.
package conflict

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/reservation"
)

const (
	minGapMinutes = 30

	historicalRiskCap   = 60
	historicalRiskStep  = 10
	pendingRiskCap      = 30
	pendingRiskStep     = 15
	holidayRiskBump     = 20
	highDemandThreshold = 70
)

// Booking is the slice of an existing reservation the detector needs.
type Booking struct {
	ID   uuid.UUID
	Slot reservation.TimeSlot
}

// Input carries everything needed for one detection pass. Both
// approved and pending bookings block the slot.
type Input struct {
	Requested       reservation.TimeSlot
	Approved        []Booking
	Pending         []Booking
	HistoricalCount int
	Holiday         bool
	OperatingWindow reservation.TimeSlot
}

type Result struct {
	HasConflict      bool
	Message          string
	HardConflicts    []Booking
	PendingConflicts []Booking
	PendingCount     int
	RiskScore        int
	Alternatives     []reservation.TimeSlot
}

// Detect classifies the requested slot against existing bookings. Any
// overlap with an approved or pending reservation is a conflict; a
// pending hold blocks the slot until it is resolved by staff.
func Detect(in Input) Result {
	var hard, pending []Booking
	for _, b := range in.Approved {
		if in.Requested.Overlaps(b.Slot) {
			hard = append(hard, b)
		}
	}
	for _, b := range in.Pending {
		if in.Requested.Overlaps(b.Slot) {
			pending = append(pending, b)
		}
	}

	risk := RiskScore(in.HistoricalCount, len(pending), in.Holiday)

	res := Result{
		HasConflict:      len(hard) > 0 || len(pending) > 0,
		HardConflicts:    hard,
		PendingConflicts: pending,
		PendingCount:     len(pending),
		RiskScore:        risk,
	}

	switch {
	case len(hard) > 0:
		res.Message = "This time slot is already booked (approved reservation). Please select an alternative time."
	case len(pending) > 0:
		res.Message = fmt.Sprintf("This time slot is held by %d pending reservation(s). Please select an alternative time.", len(pending))
	case risk > highDemandThreshold:
		res.Message = "High demand period detected. Consider booking in advance."
	default:
		res.Message = "No conflicts detected. This slot is available."
	}
	if res.HasConflict {
		res.Alternatives = FindAlternatives(append(append([]Booking{}, in.Approved...), in.Pending...), in.OperatingWindow)
	}
	return res
}

// RiskScore combines historical booking frequency, same-slot pending
// holds and holiday demand into a 0-100 score.
func RiskScore(historicalCount, pendingCount int, holiday bool) int {
	historical := min(historicalRiskCap, historicalCount*historicalRiskStep)
	pending := min(pendingRiskCap, pendingCount*pendingRiskStep)
	bump := 0
	if holiday {
		bump = holidayRiskBump
	}
	return min(100, historical+pending+bump)
}

// FindAlternatives returns the free gaps of at least 30 minutes between
// the given bookings inside the operating window. With no bookings the
// whole window is returned as a single slot.
func FindAlternatives(bookings []Booking, window reservation.TimeSlot) []reservation.TimeSlot {
	if len(bookings) == 0 {
		return []reservation.TimeSlot{window}
	}

	ranges := make([]reservation.TimeSlot, len(bookings))
	for i, b := range bookings {
		ranges[i] = b.Slot
	}
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].StartMinutes() < ranges[j].StartMinutes()
	})

	var gaps []reservation.TimeSlot
	cursor := window.StartMinutes()
	for _, r := range ranges {
		if cursor < r.StartMinutes() && r.StartMinutes()-cursor >= minGapMinutes {
			if slot, err := reservation.TimeSlotFromMinutes(cursor, r.StartMinutes()); err == nil {
				gaps = append(gaps, slot)
			}
		}
		if r.EndMinutes() > cursor {
			cursor = r.EndMinutes()
		}
	}
	if cursor < window.EndMinutes() && window.EndMinutes()-cursor >= minGapMinutes {
		if slot, err := reservation.TimeSlotFromMinutes(cursor, window.EndMinutes()); err == nil {
			gaps = append(gaps, slot)
		}
	}
	return gaps
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
