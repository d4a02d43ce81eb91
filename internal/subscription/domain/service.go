package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/schedule"
)

type Service interface {
	// Purchase validates the requested recurring schedule, rejects
	// overlaps with the user's existing subscriptions on the same
	// parking, prices the full date range and persists the result.
	Purchase(ctx context.Context, input PurchaseInput) (*Subscription, error)
	Get(ctx context.Context, id snowflake.ID) (*Subscription, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Subscription, error)
}

type PurchaseInput struct {
	UserID      snowflake.ID
	ParkingID   snowflake.ID
	StartDate   string
	Months      int
	WeeklySlots []schedule.WeeklySlot
}

var (
	ErrNotFound            = errors.New("subscription_not_found")
	ErrInvalidMonths       = errors.New("invalid_months")
	ErrInvalidStartDate    = errors.New("invalid_start_date")
	ErrMissingWeeklySlots  = errors.New("missing_weekly_slots")
	ErrInvalidWeeklySlot   = errors.New("invalid_weekly_slot")
	ErrOverlappingSubscription = errors.New("overlapping_subscription")
)
