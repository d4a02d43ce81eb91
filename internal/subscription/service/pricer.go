package service

import (
	"time"

	"github.com/smallbiznis/parkline/internal/billing"
	"github.com/smallbiznis/parkline/internal/schedule"
)

// scheduleMinutes walks every calendar day of [startDate, endDate] and
// sums the billed minutes of each weekly-slot occurrence falling on
// that day. A midnight-crossing occurrence belongs entirely to its
// start day, so its full duration counts there and nothing is added on
// the following day. Each occurrence is rounded up to the billing slot
// size independently, matching how a stay of the same window would be
// billed.
func scheduleMinutes(calc *billing.Calculator, startDate, endDate time.Time, slots []schedule.WeeklySlot) int {
	total := 0
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		dow := schedule.ISOWeekday(day)
		for _, slot := range slots {
			if slot.DayOfWeek != dow {
				continue
			}
			duration := occurrenceMinutes(slot)
			if duration <= 0 {
				continue
			}
			slotSize := calc.SlotMinutes()
			total += (duration + slotSize - 1) / slotSize * slotSize
		}
	}
	return total
}

// occurrenceMinutes is the wall-clock length of one slot occurrence.
// Start after End means the window runs into the following day.
func occurrenceMinutes(slot schedule.WeeklySlot) int {
	start := minutesOfDay(slot.Start)
	end := minutesOfDay(slot.End)
	duration := end - start
	if slot.Start > slot.End {
		duration += 24 * 60
	}
	return duration
}

func minutesOfDay(hhmm string) int {
	t, err := time.Parse(schedule.TimeLayout, hhmm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}
