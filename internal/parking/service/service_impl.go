package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/clock"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	"github.com/smallbiznis/parkline/internal/schedule"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  parkingdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  parkingdomain.Repository
}

func NewService(p ServiceParam) parkingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("parking.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input parkingdomain.CreateParkingInput) (*parkingdomain.Parking, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	parking := parkingdomain.Parking{
		ID:          s.genID.Generate(),
		OwnerID:     input.OwnerID,
		Name:        strings.TrimSpace(input.Name),
		Capacity:    input.Capacity,
		HourlyRate:  input.HourlyRate,
		OpenTime:    input.OpenTime,
		CloseTime:   input.CloseTime,
		OpeningDays: datatypes.NewJSONSlice(normalizeDays(input.OpeningDays)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &parking); err != nil {
		return nil, err
	}
	s.log.Info("parking created",
		zap.String("parking_id", parking.ID.String()),
		zap.Int("capacity", parking.Capacity),
	)
	return &parking, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*parkingdomain.Parking, error) {
	parking, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, parkingdomain.ErrNotFound
	}
	return parking, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]parkingdomain.Parking, error) {
	return s.repo.ListByOwner(ctx, s.db, ownerID)
}

func (s *Service) Replace(ctx context.Context, parking parkingdomain.Parking) (*parkingdomain.Parking, error) {
	existing, err := s.repo.FindByID(ctx, s.db, parking.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, parkingdomain.ErrNotFound
	}

	if err := validate(parkingdomain.CreateParkingInput{
		OwnerID:     parking.OwnerID,
		Name:        parking.Name,
		Capacity:    parking.Capacity,
		HourlyRate:  parking.HourlyRate,
		OpenTime:    parking.OpenTime,
		CloseTime:   parking.CloseTime,
		OpeningDays: parking.OpeningDays,
	}); err != nil {
		return nil, err
	}

	parking.CreatedAt = existing.CreatedAt
	parking.UpdatedAt = s.clock.Now()
	parking.OpeningDays = datatypes.NewJSONSlice(normalizeDays(parking.OpeningDays))
	if err := s.repo.Replace(ctx, s.db, &parking); err != nil {
		return nil, err
	}
	return &parking, nil
}

func validate(input parkingdomain.CreateParkingInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return parkingdomain.ErrInvalidName
	}
	if input.Capacity < 0 {
		return parkingdomain.ErrInvalidCapacity
	}
	if input.HourlyRate < 0 {
		return parkingdomain.ErrInvalidHourlyRate
	}
	if !schedule.ValidTimeOfDay(input.OpenTime) || !schedule.ValidTimeOfDay(input.CloseTime) {
		return parkingdomain.ErrInvalidOpeningTime
	}
	for _, day := range input.OpeningDays {
		if day < 1 || day > 7 {
			return parkingdomain.ErrInvalidOpeningDay
		}
	}
	return nil
}

// normalizeDays treats an empty set as open every day.
func normalizeDays(days []int) []int {
	if len(days) == 0 {
		return []int{1, 2, 3, 4, 5, 6, 7}
	}
	out := make([]int, 0, len(days))
	seen := map[int]bool{}
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
