package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/billing"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/observability/metrics"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	tariff  *config.TariffConfigHolder
	metrics *metrics.Metrics

	repo         staydomain.Repository
	reservations reservationdomain.Repository
	parkings     parkingdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tariff  *config.TariffConfigHolder
	Metrics *metrics.Metrics

	Repo         staydomain.Repository
	Reservations reservationdomain.Repository
	Parkings     parkingdomain.Repository
}

func NewService(p ServiceParam) staydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("stay.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		tariff:  p.Tariff,
		metrics: p.Metrics,

		repo:         p.Repo,
		reservations: p.Reservations,
		parkings:     p.Parkings,
	}
}

func (s *Service) Enter(ctx context.Context, reservationCode string) (*staydomain.Stationnement, error) {
	var stay *staydomain.Stationnement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservations.FindByCode(ctx, tx, reservationCode)
		if err != nil {
			return err
		}
		if reservation == nil {
			return reservationdomain.ErrNotFound
		}
		if reservation.Status != reservationdomain.ReservationStatusPending {
			return staydomain.ErrReservationClosed
		}

		entered, err := s.repo.ExistsByReservation(ctx, tx, reservation.ID)
		if err != nil {
			return err
		}
		if entered {
			return staydomain.ErrReservationEntered
		}

		now := s.clock.Now()
		stay = &staydomain.Stationnement{
			ID:            s.genID.Generate(),
			ReservationID: reservation.ID,
			EnteredAt:     now,
			CreatedAt:     now,
		}
		return s.repo.Insert(ctx, tx, stay)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("vehicle entered",
		zap.String("stationnement_id", stay.ID.String()),
		zap.String("reservation_id", stay.ReservationID.String()),
	)
	return stay, nil
}

func (s *Service) Exit(ctx context.Context, reservationCode string) (*staydomain.Stationnement, billing.Charge, error) {
	var (
		stay      *staydomain.Stationnement
		charge    billing.Charge
		parkingID snowflake.ID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservations.FindByCode(ctx, tx, reservationCode)
		if err != nil {
			return err
		}
		if reservation == nil {
			return reservationdomain.ErrNotFound
		}
		parkingID = reservation.ParkingID

		stay, err = s.repo.FindActiveByReservation(ctx, tx, reservation.ID)
		if err != nil {
			return err
		}
		if stay == nil {
			return staydomain.ErrNoActiveStay
		}

		parking, err := s.parkings.FindByID(ctx, tx, reservation.ParkingID)
		if err != nil {
			return err
		}
		if parking == nil {
			return parkingdomain.ErrNotFound
		}

		tariff := s.tariff.Get()
		calc := billing.New(billing.Config{
			SlotMinutes:       tariff.SlotMinutes,
			PenaltyMultiplier: tariff.PenaltyMultiplier,
		})

		exitedAt := s.clock.Now()
		charge = calc.Compute(stay.EnteredAt, exitedAt, reservation.EndAt, parking.HourlyRate)

		closed, err := s.repo.Close(ctx, tx, stay.ID, exitedAt, charge.BaseAmount, charge.PenaltyAmount)
		if err != nil {
			return err
		}
		if !closed {
			return staydomain.ErrAlreadyClosed
		}

		stay.ExitedAt = &exitedAt
		stay.BilledAmount = &charge.BaseAmount
		stay.PenaltyAmount = &charge.PenaltyAmount
		return nil
	})
	if err != nil {
		return nil, billing.Charge{}, err
	}

	s.metrics.RecordStayClosed(ctx, parkingID.String(), charge.PenaltyAmount > 0)
	s.log.Info("vehicle exited",
		zap.String("stationnement_id", stay.ID.String()),
		zap.Int("billed_minutes", charge.BilledMinutes),
		zap.Float64("total_amount", charge.TotalAmount),
	)
	return stay, charge, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*staydomain.Stationnement, error) {
	stay, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if stay == nil {
		return nil, staydomain.ErrNotFound
	}
	return stay, nil
}

func (s *Service) Revenue(ctx context.Context, parkingID snowflake.ID, from, to time.Time) (*staydomain.RevenueReport, error) {
	if !from.Before(to) {
		return nil, staydomain.ErrInvalidRevenueSpan
	}
	return s.repo.Revenue(ctx, s.db, parkingID, from, to)
}
