// Package holiday resolves dates to national holidays and local
// barangay events used by the conflict risk model.
package holiday

import (
	"fmt"
	"time"
)

// EventOn returns the holiday or local event name for the given date,
// or empty string and false when the date is an ordinary day.
func EventOn(date time.Time) (string, bool) {
	y := date.Year()
	key := date.Format("2006-01-02")

	fixed := map[string]string{
		fmt.Sprintf("%d-01-01", y): "New Year's Day",
		fmt.Sprintf("%d-02-25", y): "EDSA People Power Anniversary",
		fmt.Sprintf("%d-04-09", y): "Araw ng Kagitingan",
		fmt.Sprintf("%d-06-12", y): "Independence Day",
		fmt.Sprintf("%d-08-21", y): "Ninoy Aquino Day",
		fmt.Sprintf("%d-11-01", y): "All Saints' Day",
		fmt.Sprintf("%d-11-02", y): "All Souls' Day",
		fmt.Sprintf("%d-11-30", y): "Bonifacio Day",
		fmt.Sprintf("%d-12-25", y): "Christmas Day",
		fmt.Sprintf("%d-12-30", y): "Rizal Day",
		// Barangay Culiat local events
		fmt.Sprintf("%d-09-08", y): "Barangay Culiat Fiesta",
		fmt.Sprintf("%d-02-11", y): "Barangay Culiat Founding Day",
	}
	if name, ok := fixed[key]; ok {
		return name, true
	}

	movable := map[string]string{
		nthWeekdayOf(y, time.May, time.Sunday, 2).Format("2006-01-02"):  "Mother's Day",
		nthWeekdayOf(y, time.June, time.Sunday, 2).Format("2006-01-02"): "Father's Day",
		lastWeekdayOf(y, time.August, time.Monday).Format("2006-01-02"): "National Heroes Day",
	}
	if name, ok := movable[key]; ok {
		return name, true
	}
	return "", false
}

// IsHoliday reports whether the date carries any holiday or event tag.
func IsHoliday(date time.Time) bool {
	_, ok := EventOn(date)
	return ok
}

func nthWeekdayOf(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekdayOf(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
