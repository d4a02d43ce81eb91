package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsActiveAt_SameDayBoundariesInclusive(t *testing.T) {
	slots := []WeeklySlot{{DayOfWeek: 3, Start: "09:00", End: "12:00"}}

	// 2025-06-04 is a Wednesday (ISO day 3).
	assert.True(t, IsActiveAt("2025-06-04", "09:00", "2025-06-01", "2025-06-30", slots))
	assert.True(t, IsActiveAt("2025-06-04", "12:00", "2025-06-01", "2025-06-30", slots))
	assert.True(t, IsActiveAt("2025-06-04", "10:30", "2025-06-01", "2025-06-30", slots))

	assert.False(t, IsActiveAt("2025-06-04", "08:59", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "12:01", "2025-06-01", "2025-06-30", slots))

	// Same time, wrong weekday.
	assert.False(t, IsActiveAt("2025-06-05", "10:30", "2025-06-01", "2025-06-30", slots))
}

func TestIsActiveAt_MidnightCrossing(t *testing.T) {
	slots := []WeeklySlot{{DayOfWeek: 1, Start: "22:00", End: "02:00"}}

	// 2025-06-02 is a Monday, 2025-06-03 a Tuesday.
	assert.True(t, IsActiveAt("2025-06-02", "23:59", "2025-06-01", "2025-06-30", slots))
	assert.True(t, IsActiveAt("2025-06-03", "00:00", "2025-06-01", "2025-06-30", slots))
	assert.True(t, IsActiveAt("2025-06-03", "02:00", "2025-06-01", "2025-06-30", slots))

	assert.False(t, IsActiveAt("2025-06-03", "02:01", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-02", "21:59", "2025-06-01", "2025-06-30", slots))

	// Sunday slot wraps into Monday.
	sunday := []WeeklySlot{{DayOfWeek: 7, Start: "23:00", End: "01:00"}}
	assert.True(t, IsActiveAt("2025-06-01", "23:30", "2025-06-01", "2025-06-30", sunday))
	assert.True(t, IsActiveAt("2025-06-02", "00:30", "2025-06-01", "2025-06-30", sunday))
}

func TestIsActiveAt_OutsideDateRange(t *testing.T) {
	slots := []WeeklySlot{{DayOfWeek: 3, Start: "00:00", End: "23:59"}}

	assert.False(t, IsActiveAt("2025-05-28", "10:00", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-07-02", "10:00", "2025-06-01", "2025-06-30", slots))

	// Boundary dates are inside the range.
	assert.False(t, IsActiveAt("2025-06-01", "10:00", "2025-06-01", "2025-06-30", slots)) // Sunday, dow mismatch
	assert.True(t, IsActiveAt("2025-06-04", "10:00", "2025-06-04", "2025-06-04", slots))
}

func TestIsActiveAt_FailsClosed(t *testing.T) {
	slots := []WeeklySlot{{DayOfWeek: 3, Start: "09:00", End: "12:00"}}

	assert.False(t, IsActiveAt("not-a-date", "10:00", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "25:00", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "9:00", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "10:00", "garbage", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "10:00", "2025-06-01", "garbage", slots))
	assert.False(t, IsActiveAt("2025-06-04", "10:00", "2025-06-01", "2025-06-30", nil))
}

func TestIsActiveAt_MalformedSlotsSkipped(t *testing.T) {
	slots := []WeeklySlot{
		{DayOfWeek: 8, Start: "09:00", End: "12:00"},  // day out of range
		{DayOfWeek: 3, Start: "9:00", End: "12:00"},   // malformed start
		{DayOfWeek: 3, Start: "09:00", End: "24:00"},  // malformed end
		{DayOfWeek: 3, Start: "14:00", End: "16:00"},  // valid
	}

	assert.True(t, IsActiveAt("2025-06-04", "15:00", "2025-06-01", "2025-06-30", slots))
	assert.False(t, IsActiveAt("2025-06-04", "10:00", "2025-06-01", "2025-06-30", slots))

	allInvalid := slots[:3]
	assert.False(t, IsActiveAt("2025-06-04", "15:00", "2025-06-01", "2025-06-30", allInvalid))
}

func TestOverlapsSlot(t *testing.T) {
	slots := []WeeklySlot{{DayOfWeek: 3, Start: "09:00", End: "12:00"}}
	day := func(h, m int) time.Time {
		return time.Date(2025, 6, 4, h, m, 0, 0, time.UTC)
	}

	assert.True(t, OverlapsSlot(day(8, 0), day(10, 0), "2025-06-01", "2025-06-30", slots))
	assert.True(t, OverlapsSlot(day(11, 45), day(13, 0), "2025-06-01", "2025-06-30", slots))
	assert.False(t, OverlapsSlot(day(13, 0), day(15, 0), "2025-06-01", "2025-06-30", slots))

	// Non-positive intervals fail closed.
	assert.False(t, OverlapsSlot(day(10, 0), day(10, 0), "2025-06-01", "2025-06-30", slots))
	assert.False(t, OverlapsSlot(day(10, 0), day(9, 0), "2025-06-01", "2025-06-30", slots))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7, ISOWeekday(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
}
