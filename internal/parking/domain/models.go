// Package domain contains the parking facility model and its
// opening-hours predicate.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/schedule"
	"gorm.io/datatypes"
)

// Parking is a physically capacity-limited facility. OpenTime and
// CloseTime are "HH:MM"; a CloseTime before OpenTime means the open
// window crosses midnight. OpeningDays holds ISO weekdays (1=Monday ..
// 7=Sunday); an empty set is normalized to all seven days. Replaced
// whole on update, never mutated field by field.
type Parking struct {
	ID          snowflake.ID              `gorm:"primaryKey"`
	OwnerID     snowflake.ID              `gorm:"not null;index"`
	Name        string                    `gorm:"type:text;not null"`
	Capacity    int                       `gorm:"not null"`
	HourlyRate  float64                   `gorm:"not null"`
	OpenTime    string                    `gorm:"type:text;not null"`
	CloseTime   string                    `gorm:"type:text;not null"`
	OpeningDays datatypes.JSONSlice[int]  `gorm:"type:jsonb"`
	CreatedAt   time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Parking) TableName() string { return "parkings" }

// IsOpenAt reports whether the facility is open at the given instant.
// The weekday must be among the opening days and the time of day must
// fall in the open window, which is a single inclusive range when
// OpenTime <= CloseTime and the union of two ranges across midnight
// otherwise.
func (p Parking) IsOpenAt(at time.Time) bool {
	if !p.openOnDay(schedule.ISOWeekday(at)) {
		return false
	}
	tod := at.Format(schedule.TimeLayout)
	if p.OpenTime <= p.CloseTime {
		return p.OpenTime <= tod && tod <= p.CloseTime
	}
	return tod >= p.OpenTime || tod <= p.CloseTime
}

// IsOpenForSlot checks both endpoints of the interval. It deliberately
// does not verify every instant in between.
func (p Parking) IsOpenForSlot(start, end time.Time) bool {
	return p.IsOpenAt(start) && p.IsOpenAt(end)
}

func (p Parking) openOnDay(isoDay int) bool {
	if len(p.OpeningDays) == 0 {
		return true
	}
	for _, d := range p.OpeningDays {
		if d == isoDay {
			return true
		}
	}
	return false
}
