package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Book runs admission control and persists the reservation when
	// capacity allows. The occupancy read and the insert happen in one
	// transaction holding the parking row lock.
	Book(ctx context.Context, input BookInput) (*Reservation, error)
	Get(ctx context.Context, id snowflake.ID) (*Reservation, error)
	Cancel(ctx context.Context, id, userID snowflake.ID) (*Reservation, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Reservation, error)
}

type BookInput struct {
	UserID      snowflake.ID
	ParkingID   snowflake.ID
	StartAt     time.Time
	EndAt       time.Time
	VehicleType string
}

var (
	ErrNotFound           = errors.New("reservation_not_found")
	ErrInvalidTimeRange   = errors.New("invalid_time_range")
	ErrInvalidVehicleType = errors.New("invalid_vehicle_type")
	ErrParkingClosed      = errors.New("parking_closed")
	ErrCapacityExhausted  = errors.New("capacity_exhausted")
	ErrNotCancellable     = errors.New("reservation_not_cancellable")
	ErrNotOwner           = errors.New("reservation_not_owner")
)
