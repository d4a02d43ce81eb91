package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Subscription, error)

	// ExistsOverlapping reports whether the user already holds a
	// subscription on the parking whose date range intersects
	// [startDate, endDate] (inclusive ISO dates).
	ExistsOverlapping(ctx context.Context, db *gorm.DB, userID, parkingID snowflake.ID, startDate, endDate string) (bool, error)

	// ListCandidates returns subscriptions on the parking whose date
	// range intersects [startDate, endDate]; the caller applies the
	// weekly-slot matcher to decide actual activity.
	ListCandidates(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, startDate, endDate string) ([]Subscription, error)
}
