package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m, s int) time.Time {
	return time.Date(2025, 6, 4, h, m, s, 0, time.UTC)
}

func TestBilledMinutes_RoundsUpToSlot(t *testing.T) {
	calc := New(Config{})

	// Any started slot bills in full.
	assert.Equal(t, 15, calc.BilledMinutes(at(10, 0, 0), at(10, 1, 0)))
	assert.Equal(t, 15, calc.BilledMinutes(at(10, 0, 0), at(10, 0, 1)))
	assert.Equal(t, 15, calc.BilledMinutes(at(10, 0, 0), at(10, 15, 0)))
	assert.Equal(t, 30, calc.BilledMinutes(at(10, 0, 0), at(10, 15, 1)))
	assert.Equal(t, 120, calc.BilledMinutes(at(10, 0, 0), at(12, 0, 0)))
	assert.Equal(t, 135, calc.BilledMinutes(at(10, 0, 0), at(12, 1, 0)))

	assert.Equal(t, 0, calc.BilledMinutes(at(10, 0, 0), at(10, 0, 0)))
	assert.Equal(t, 0, calc.BilledMinutes(at(11, 0, 0), at(10, 0, 0)))
}

func TestBilledMinutes_AlwaysSlotMultipleAndCoversElapsed(t *testing.T) {
	calc := New(Config{SlotMinutes: 15})

	durations := []time.Duration{
		time.Second,
		time.Minute,
		7 * time.Minute,
		14*time.Minute + 59*time.Second,
		15 * time.Minute,
		16 * time.Minute,
		59 * time.Minute,
		2*time.Hour + 31*time.Minute,
	}
	start := at(8, 0, 0)
	for _, d := range durations {
		minutes := calc.BilledMinutes(start, start.Add(d))
		assert.Positive(t, minutes)
		assert.Zero(t, minutes%15, "billed minutes must be a slot multiple for %s", d)
		assert.GreaterOrEqual(t, float64(minutes), d.Minutes())
	}
}

func TestAmountForMinutes(t *testing.T) {
	calc := New(Config{})

	assert.Equal(t, 2.0, calc.AmountForMinutes(60, 2.0))
	assert.Equal(t, 0.5, calc.AmountForMinutes(15, 2.0))
	assert.Equal(t, 0.63, calc.AmountForMinutes(15, 2.5))
	assert.Equal(t, 0.0, calc.AmountForMinutes(0, 2.0))

	// Monotonic non-decreasing in minutes for a fixed rate.
	prev := 0.0
	for minutes := 0; minutes <= 240; minutes += 15 {
		amount := calc.AmountForMinutes(minutes, 1.75)
		assert.GreaterOrEqual(t, amount, prev)
		prev = amount
	}
}

func TestCompute_NoOverstay(t *testing.T) {
	calc := New(Config{})

	charge := calc.Compute(at(10, 0, 0), at(11, 30, 0), at(12, 0, 0), 2.0)
	assert.Equal(t, 90, charge.BilledMinutes)
	assert.Equal(t, 3.0, charge.BaseAmount)
	assert.Equal(t, 0.0, charge.PenaltyAmount)
	assert.Equal(t, charge.BaseAmount, charge.TotalAmount)
}

func TestCompute_Overstay(t *testing.T) {
	calc := New(Config{})

	// Reserved until 11:00, left at 12:00: one hour of overtime.
	charge := calc.Compute(at(10, 0, 0), at(12, 0, 0), at(11, 0, 0), 2.0)
	assert.Equal(t, 120, charge.BilledMinutes)
	assert.Equal(t, 4.0, charge.BaseAmount)
	// Overtime is already in the base; penalty is the extra (x1) portion.
	assert.Equal(t, 2.0, charge.PenaltyAmount)
	assert.Equal(t, 6.0, charge.TotalAmount)
}

func TestCompute_OverstayCustomMultiplier(t *testing.T) {
	calc := New(Config{PenaltyMultiplier: 3.0})

	charge := calc.Compute(at(10, 0, 0), at(11, 15, 0), at(11, 0, 0), 4.0)
	assert.Equal(t, 75, charge.BilledMinutes)
	assert.Equal(t, 5.0, charge.BaseAmount)
	// 15 overtime minutes at rate 4.0 = 1.0, times (3.0 - 1).
	assert.Equal(t, 2.0, charge.PenaltyAmount)
	assert.Equal(t, 7.0, charge.TotalAmount)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.13, Round2(1.125))
	assert.Equal(t, 1.12, Round2(1.124))
	assert.Equal(t, 2.0, Round2(1.999999999))
}
