package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/parkline/internal/billing"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/lock"
	"github.com/smallbiznis/parkline/internal/observability/metrics"
	"github.com/smallbiznis/parkline/internal/occupancy"
	"github.com/smallbiznis/parkline/internal/occupancy/gormstore"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const admissionLockTTL = 5 * time.Second

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	tariff  *config.TariffConfigHolder
	locker  *lock.Locker
	metrics *metrics.Metrics

	repo     reservationdomain.Repository
	parkings parkingdomain.Repository
	store    *gormstore.Store
	engine   *occupancy.Engine
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tariff  *config.TariffConfigHolder
	Locker  *lock.Locker `optional:"true"`
	Metrics *metrics.Metrics

	Repo     reservationdomain.Repository
	Parkings parkingdomain.Repository
	Store    *gormstore.Store
	Engine   *occupancy.Engine
}

func NewService(p ServiceParam) reservationdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reservation.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		tariff:  p.Tariff,
		locker:  p.Locker,
		metrics: p.Metrics,

		repo:     p.Repo,
		parkings: p.Parkings,
		store:    p.Store,
		engine:   p.Engine,
	}
}

func (s *Service) Book(ctx context.Context, input reservationdomain.BookInput) (*reservationdomain.Reservation, error) {
	if !input.StartAt.Before(input.EndAt) {
		return nil, reservationdomain.ErrInvalidTimeRange
	}
	if strings.TrimSpace(input.VehicleType) == "" {
		return nil, reservationdomain.ErrInvalidVehicleType
	}

	// Best-effort redis lock keeps concurrent bookings for one parking
	// from piling up on the database row lock. Correctness does not
	// depend on it: the transaction below serializes admission.
	if token, ok, err := s.locker.TryLock(ctx, lock.AdmissionKey(input.ParkingID), admissionLockTTL); err == nil && ok {
		defer func() {
			if releaseErr := s.locker.Release(ctx, lock.AdmissionKey(input.ParkingID), token); releaseErr != nil {
				s.log.Warn("admission lock release failed", zap.Error(releaseErr))
			}
		}()
	}

	var reservation *reservationdomain.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parking, err := s.parkings.FindByIDForUpdate(ctx, tx, input.ParkingID)
		if err != nil {
			return err
		}
		if parking == nil {
			return parkingdomain.ErrNotFound
		}
		if !parking.IsOpenForSlot(input.StartAt, input.EndAt) {
			return reservationdomain.ErrParkingClosed
		}

		engine := s.engine.WithStore(s.store.WithTx(tx))
		committed, err := engine.TotalForAvailability(ctx, parking.ID, input.StartAt, input.EndAt)
		if err != nil {
			return err
		}
		if committed >= int64(parking.Capacity) {
			return reservationdomain.ErrCapacityExhausted
		}

		tariff := s.tariff.Get()
		calc := billing.New(billing.Config{
			SlotMinutes:       tariff.SlotMinutes,
			PenaltyMultiplier: tariff.PenaltyMultiplier,
		})
		amount := calc.AmountForMinutes(calc.BilledMinutes(input.StartAt, input.EndAt), parking.HourlyRate)

		reservation = &reservationdomain.Reservation{
			ID:          s.genID.Generate(),
			Code:        uuid.NewString(),
			UserID:      input.UserID,
			ParkingID:   input.ParkingID,
			StartAt:     input.StartAt,
			EndAt:       input.EndAt,
			VehicleType: strings.TrimSpace(input.VehicleType),
			Amount:      amount,
			Status:      reservationdomain.ReservationStatusPending,
			CreatedAt:   s.clock.Now(),
		}
		return s.repo.Insert(ctx, tx, reservation)
	})
	if err != nil {
		switch err {
		case reservationdomain.ErrCapacityExhausted, reservationdomain.ErrParkingClosed:
			s.metrics.RecordAdmissionRejected(ctx, input.ParkingID.String(), err.Error())
		}
		return nil, err
	}

	s.metrics.RecordAdmissionAccepted(ctx, input.ParkingID.String())
	s.log.Info("reservation booked",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("parking_id", reservation.ParkingID.String()),
		zap.Float64("amount", reservation.Amount),
	)
	return reservation, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*reservationdomain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, reservationdomain.ErrNotFound
	}
	return reservation, nil
}

func (s *Service) Cancel(ctx context.Context, id, userID snowflake.ID) (*reservationdomain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, reservationdomain.ErrNotFound
	}
	if reservation.UserID != userID {
		return nil, reservationdomain.ErrNotOwner
	}

	changed, err := s.repo.MarkCanceled(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, reservationdomain.ErrNotCancellable
	}

	reservation.Status = reservationdomain.ReservationStatusCanceled
	s.log.Info("reservation canceled", zap.String("reservation_id", id.String()))
	return reservation, nil
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID) ([]reservationdomain.Reservation, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}
