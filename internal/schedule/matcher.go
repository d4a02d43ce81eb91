// Package schedule decides whether weekly recurring availability
// patterns are active at a point in time or over a concrete interval.
package schedule

import (
	"regexp"
	"time"
)

const (
	// DateLayout is the calendar-date wire format used across the engine.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day wire format used across the engine.
	TimeLayout = "15:04"

	// tick is the sampling granularity for interval overlap checks.
	tick = 15 * time.Minute
)

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// WeeklySlot is one recurring availability window. DayOfWeek follows
// ISO-8601 (1=Monday .. 7=Sunday). Start and End are "HH:MM"; Start
// after End means the window crosses midnight into the following day.
type WeeklySlot struct {
	DayOfWeek int    `json:"day_of_week"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Valid reports whether the slot has an in-range day and well-formed times.
func (s WeeklySlot) Valid() bool {
	return s.DayOfWeek >= 1 && s.DayOfWeek <= 7 &&
		ValidTimeOfDay(s.Start) && ValidTimeOfDay(s.End)
}

// ValidTimeOfDay reports whether value matches the strict 24-hour HH:MM pattern.
func ValidTimeOfDay(value string) bool {
	return timeOfDayPattern.MatchString(value)
}

// ISOWeekday maps time.Weekday (Sunday=0) to ISO-8601 (Monday=1 .. Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func nextDay(dow int) int {
	if dow == 7 {
		return 1
	}
	return dow + 1
}

// IsActiveAt reports whether any of the weekly slots is active on the
// given calendar date at the given time of day, bounded by the
// [startDate, endDate] validity range (inclusive calendar dates).
//
// The check fails closed: malformed dates or times yield false, and
// individually malformed slot entries are skipped rather than fatal.
// Same-day windows are inclusive on both boundaries; windows whose
// start is after their end cross midnight into the following day.
func IsActiveAt(date, timeOfDay, startDate, endDate string, slots []WeeklySlot) bool {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	if !ValidTimeOfDay(timeOfDay) {
		return false
	}

	from, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return false
	}
	to, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return false
	}
	if day.Before(from) || day.After(to) {
		return false
	}

	dow := ISOWeekday(day)
	for _, slot := range slots {
		if !slot.Valid() {
			continue
		}
		if slotActiveAt(slot, dow, timeOfDay) {
			return true
		}
	}
	return false
}

func slotActiveAt(slot WeeklySlot, dow int, timeOfDay string) bool {
	if slot.Start <= slot.End {
		return dow == slot.DayOfWeek && slot.Start <= timeOfDay && timeOfDay <= slot.End
	}
	// Crosses midnight: tail of the slot day, head of the following day.
	if dow == slot.DayOfWeek && timeOfDay >= slot.Start {
		return true
	}
	return dow == nextDay(slot.DayOfWeek) && timeOfDay <= slot.End
}

// OverlapsSlot reports whether any weekly slot is active somewhere in
// [startAt, endAt). The interval is sampled at 15-minute ticks, which
// is exact at tick boundaries and can miss sub-tick overlap at slot
// edges; that tolerance is accepted for billing-grade scheduling.
// Non-positive intervals yield false.
func OverlapsSlot(startAt, endAt time.Time, startDate, endDate string, slots []WeeklySlot) bool {
	if !endAt.After(startAt) {
		return false
	}
	for at := startAt; at.Before(endAt); at = at.Add(tick) {
		if IsActiveAt(at.Format(DateLayout), at.Format(TimeLayout), startDate, endDate, slots) {
			return true
		}
	}
	return false
}
