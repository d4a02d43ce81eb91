// Package domain contains the stationnement model: a physically
// present vehicle occupying a slot from entry until exit.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Stationnement is created at gate entry and closed exactly once at
// exit. A nil ExitedAt means the vehicle is still inside and counts
// toward live occupancy; BilledAmount and PenaltyAmount stay nil until
// the close writes all three fields atomically.
type Stationnement struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	ReservationID snowflake.ID `gorm:"not null;index"`
	EnteredAt     time.Time    `gorm:"not null"`
	ExitedAt      *time.Time   `gorm:""`
	BilledAmount  *float64     `gorm:""`
	PenaltyAmount *float64     `gorm:""`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Stationnement) TableName() string { return "stationnements" }

// Active reports whether the vehicle is still occupying a slot.
func (s Stationnement) Active() bool { return s.ExitedAt == nil }

// RevenueReport aggregates closed stays over a window.
type RevenueReport struct {
	ExitCount    int64   `json:"exit_count"`
	TotalBilled  float64 `json:"total_billed"`
	TotalPenalty float64 `json:"total_penalty"`
	Total        float64 `json:"total"`
}
