package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, input CreateParkingInput) (*Parking, error)
	Get(ctx context.Context, id snowflake.ID) (*Parking, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]Parking, error)
	Replace(ctx context.Context, parking Parking) (*Parking, error)
}

// CreateParkingInput carries validated-at-the-edge facility fields.
type CreateParkingInput struct {
	OwnerID     snowflake.ID
	Name        string
	Capacity    int
	HourlyRate  float64
	OpenTime    string
	CloseTime   string
	OpeningDays []int
}

var (
	ErrNotFound           = errors.New("parking_not_found")
	ErrInvalidCapacity    = errors.New("invalid_capacity")
	ErrInvalidHourlyRate  = errors.New("invalid_hourly_rate")
	ErrInvalidOpeningTime = errors.New("invalid_opening_time")
	ErrInvalidOpeningDay  = errors.New("invalid_opening_day")
	ErrInvalidName        = errors.New("invalid_name")
)
