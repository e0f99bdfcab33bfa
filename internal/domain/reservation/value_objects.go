package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTime     = errors.New("invalid time format")
	ErrInvalidTimeSlot = errors.New("end time must be after start time")
	ErrInvalidSlotText = errors.New("malformed time slot")
)

const minutesPerDay = 24 * 60

// TimeSlot is a start-end pair of wall-clock times within one day, stored as
// minutes from midnight. The legacy display forms ("Morning (8AM-12PM)",
// "08:00 - 09:00") are a presentation concern and never reach the engine.
type TimeSlot struct {
	start int
	end   int
}

func NewTimeSlot(startTime, endTime string) (TimeSlot, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return TimeSlot{}, err
	}
	if end <= start {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

// TimeSlotFromMinutes builds a slot directly from minute offsets since
// midnight. Used when deriving slots from other slots rather than user
// input.
func TimeSlotFromMinutes(start, end int) (TimeSlot, error) {
	if start < 0 || end > 24*60 || end <= start {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

// ParseTimeSlot reads the stored "HH:MM - HH:MM" form.
func ParseTimeSlot(s string) (TimeSlot, error) {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return TimeSlot{}, ErrInvalidSlotText
	}
	return NewTimeSlot(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (ts TimeSlot) StartMinutes() int { return ts.start }
func (ts TimeSlot) EndMinutes() int   { return ts.end }

func (ts TimeSlot) Duration() time.Duration {
	return time.Duration(ts.end-ts.start) * time.Minute
}

func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start < other.end && other.start < ts.end
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("%s - %s", formatClock(ts.start), formatClock(ts.end))
}

func formatClock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Schedule pins a TimeSlot to a calendar date.
type Schedule struct {
	date time.Time
	slot TimeSlot
}

func NewSchedule(date time.Time, slot TimeSlot) Schedule {
	return Schedule{date: dateOnly(date), slot: slot}
}

func (s Schedule) Date() time.Time { return s.date }
func (s Schedule) Slot() TimeSlot  { return s.slot }

func (s Schedule) StartAt() time.Time {
	return s.date.Add(time.Duration(s.slot.start) * time.Minute)
}

func (s Schedule) EndAt() time.Time {
	return s.date.Add(time.Duration(s.slot.end) * time.Minute)
}

func (s Schedule) HasStarted(now time.Time) bool {
	return !now.Before(s.StartAt())
}

func (s Schedule) HasEnded(now time.Time) bool {
	return !now.Before(s.EndAt())
}

// DaysUntil counts whole calendar days between now's date and the scheduled
// date. Today returns 0, tomorrow 1; past dates are negative.
func (s Schedule) DaysUntil(now time.Time) int {
	return int(s.date.Sub(dateOnly(now)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
