// Package domain contains the subscription model: a recurring weekly
// entitlement to occupy a slot over a bounded date range.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/billing"
	"github.com/smallbiznis/parkline/internal/schedule"
	"gorm.io/datatypes"
)

// Subscription covers [StartDate, EndDate] inclusive calendar dates
// ("2006-01-02", no time component). WeeklySlots holds at least one
// recurring window; Amount is the precomputed total price. Immutable;
// WithID and WithAmount return copies.
type Subscription struct {
	ID          snowflake.ID                                 `gorm:"primaryKey"`
	UserID      snowflake.ID                                 `gorm:"not null;index"`
	ParkingID   snowflake.ID                                 `gorm:"not null;index"`
	StartDate   string                                       `gorm:"type:text;not null"`
	EndDate     string                                       `gorm:"type:text;not null"`
	WeeklySlots datatypes.JSONSlice[schedule.WeeklySlot]     `gorm:"type:jsonb"`
	Amount      float64                                      `gorm:"not null"`
	CreatedAt   time.Time                                    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// WithID returns a copy carrying the assigned identity.
func (s Subscription) WithID(id snowflake.ID) Subscription {
	s.ID = id
	return s
}

// WithAmount returns a copy carrying the priced total, rounded to 2
// decimals.
func (s Subscription) WithAmount(amount float64) Subscription {
	s.Amount = billing.Round2(amount)
	return s
}

// ActiveAt reports whether the subscription entitles occupancy at the
// given instant.
func (s Subscription) ActiveAt(at time.Time) bool {
	return schedule.IsActiveAt(
		at.Format(schedule.DateLayout),
		at.Format(schedule.TimeLayout),
		s.StartDate,
		s.EndDate,
		s.WeeklySlots,
	)
}

// ActiveForSlot reports whether the subscription entitles occupancy
// anywhere in [start, end).
func (s Subscription) ActiveForSlot(start, end time.Time) bool {
	return schedule.OverlapsSlot(start, end, s.StartDate, s.EndDate, s.WeeklySlots)
}
