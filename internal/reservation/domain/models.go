// Package domain contains the reservation model: a pre-committed
// booking of one slot, not yet necessarily occupied.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReservationStatus tracks the pre-entry lifecycle. Whether a
// reservation has been converted into a live stay is derived from the
// stationnements table, not from this status.
type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "PENDING"
	ReservationStatusCanceled ReservationStatus = "CANCELED"
	ReservationStatusExpired  ReservationStatus = "EXPIRED"
)

// Reservation is immutable once persisted; lifecycle transitions go
// through dedicated repository operations.
type Reservation struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	Code        string            `gorm:"type:text;not null;uniqueIndex"`
	UserID      snowflake.ID      `gorm:"not null;index"`
	ParkingID   snowflake.ID      `gorm:"not null;index"`
	StartAt     time.Time         `gorm:"not null"`
	EndAt       time.Time         `gorm:"not null"`
	VehicleType string            `gorm:"type:text;not null"`
	Amount      float64           `gorm:"not null"`
	Status      ReservationStatus `gorm:"type:text;not null"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Reservation) TableName() string { return "reservations" }

// WithID returns a copy carrying the assigned identity.
func (r Reservation) WithID(id snowflake.ID) Reservation {
	r.ID = id
	return r
}
