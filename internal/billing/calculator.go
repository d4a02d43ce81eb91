// Package billing converts elapsed parking time into billed minutes
// and monetary amounts, including overstay penalties.
package billing

import (
	"math"
	"time"
)

const (
	// DefaultSlotMinutes is the billing granularity: every started slot
	// is billed in full.
	DefaultSlotMinutes = 15
	// DefaultPenaltyMultiplier applies to the overtime portion of a stay.
	DefaultPenaltyMultiplier = 2.0
)

// Calculator prices elapsed durations. The zero value is not usable;
// construct with New.
type Calculator struct {
	slotMinutes       int
	penaltyMultiplier float64
}

// Config overrides calculator defaults. Zero fields fall back to the
// package defaults.
type Config struct {
	SlotMinutes       int
	PenaltyMultiplier float64
}

// Charge is the outcome of pricing one closed stay.
type Charge struct {
	BilledMinutes int     `json:"billed_minutes"`
	BaseAmount    float64 `json:"base_amount"`
	PenaltyAmount float64 `json:"penalty_amount"`
	TotalAmount   float64 `json:"total_amount"`
}

func New(cfg Config) *Calculator {
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = DefaultSlotMinutes
	}
	if cfg.PenaltyMultiplier <= 0 {
		cfg.PenaltyMultiplier = DefaultPenaltyMultiplier
	}
	return &Calculator{
		slotMinutes:       cfg.SlotMinutes,
		penaltyMultiplier: cfg.PenaltyMultiplier,
	}
}

// SlotMinutes exposes the configured billing granularity.
func (c *Calculator) SlotMinutes() int { return c.slotMinutes }

// BilledMinutes converts the elapsed time between start and end into
// billed minutes: elapsed seconds rounded up to whole minutes, then
// rounded up again to the next multiple of the slot size. Intervals
// that do not run forward bill zero.
func (c *Calculator) BilledMinutes(start, end time.Time) int {
	seconds := end.Sub(start).Seconds()
	if seconds <= 0 {
		return 0
	}
	minutes := int(math.Ceil(seconds / 60))
	slots := (minutes + c.slotMinutes - 1) / c.slotMinutes
	return slots * c.slotMinutes
}

// AmountForMinutes prices billed minutes at an hourly rate, rounded
// half-up to 2 decimals.
func (c *Calculator) AmountForMinutes(minutes int, hourlyRate float64) float64 {
	return Round2(float64(minutes) / 60 * hourlyRate)
}

// Compute prices a closed stay. The base amount covers the whole stay
// [enteredAt, exitedAt]. When the exit happens after the reserved end,
// the overtime portion is surcharged at (penaltyMultiplier - 1) times
// the normal rate; the overtime duration itself is already part of the
// base amount, so the surcharge is only the extra portion.
func (c *Calculator) Compute(enteredAt, exitedAt, reservedEndAt time.Time, hourlyRate float64) Charge {
	minutes := c.BilledMinutes(enteredAt, exitedAt)
	base := c.AmountForMinutes(minutes, hourlyRate)

	var penalty float64
	if exitedAt.After(reservedEndAt) {
		overtime := c.BilledMinutes(reservedEndAt, exitedAt)
		penalty = Round2(c.AmountForMinutes(overtime, hourlyRate) * (c.penaltyMultiplier - 1))
	}

	return Charge{
		BilledMinutes: minutes,
		BaseAmount:    base,
		PenaltyAmount: penalty,
		TotalAmount:   Round2(base + penalty),
	}
}

// Round2 rounds half away from zero to 2 decimals. Kept consistent
// everywhere money is produced.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
