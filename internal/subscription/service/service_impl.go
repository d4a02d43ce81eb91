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
	"github.com/smallbiznis/parkline/internal/schedule"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSubscriptionMonths = 12

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	tariff  *config.TariffConfigHolder
	metrics *metrics.Metrics

	repo     subscriptiondomain.Repository
	parkings parkingdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tariff  *config.TariffConfigHolder
	Metrics *metrics.Metrics

	Repo     subscriptiondomain.Repository
	Parkings parkingdomain.Repository
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subscription.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		tariff:  p.Tariff,
		metrics: p.Metrics,

		repo:     p.Repo,
		parkings: p.Parkings,
	}
}

func (s *Service) Purchase(ctx context.Context, input subscriptiondomain.PurchaseInput) (*subscriptiondomain.Subscription, error) {
	if input.Months < 1 || input.Months > maxSubscriptionMonths {
		return nil, subscriptiondomain.ErrInvalidMonths
	}
	startDate, err := time.Parse(schedule.DateLayout, input.StartDate)
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidStartDate
	}
	if len(input.WeeklySlots) == 0 {
		return nil, subscriptiondomain.ErrMissingWeeklySlots
	}
	for _, slot := range input.WeeklySlots {
		if !slot.Valid() {
			return nil, subscriptiondomain.ErrInvalidWeeklySlot
		}
	}

	// One month from the 17th ends on the 16th of the next month: add
	// the months, then step back one day.
	endDate := startDate.AddDate(0, input.Months, 0).AddDate(0, 0, -1)

	parking, err := s.parkings.FindByID(ctx, s.db, input.ParkingID)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, parkingdomain.ErrNotFound
	}

	overlapping, err := s.repo.ExistsOverlapping(
		ctx, s.db,
		input.UserID, input.ParkingID,
		input.StartDate, endDate.Format(schedule.DateLayout),
	)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, subscriptiondomain.ErrOverlappingSubscription
	}

	tariff := s.tariff.Get()
	calc := billing.New(billing.Config{
		SlotMinutes:       tariff.SlotMinutes,
		PenaltyMultiplier: tariff.PenaltyMultiplier,
	})
	minutes := scheduleMinutes(calc, startDate, endDate, input.WeeklySlots)
	amount := calc.AmountForMinutes(minutes, parking.HourlyRate)

	subscription := subscriptiondomain.Subscription{
		UserID:      input.UserID,
		ParkingID:   input.ParkingID,
		StartDate:   input.StartDate,
		EndDate:     endDate.Format(schedule.DateLayout),
		WeeklySlots: datatypes.NewJSONSlice(input.WeeklySlots),
		CreatedAt:   s.clock.Now(),
	}.WithID(s.genID.Generate()).WithAmount(amount)

	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return nil, err
	}

	s.metrics.RecordSubscriptionSold(ctx, input.ParkingID.String())
	s.log.Info("subscription purchased",
		zap.String("subscription_id", subscription.ID.String()),
		zap.String("parking_id", subscription.ParkingID.String()),
		zap.Int("billed_minutes", minutes),
		zap.Float64("amount", subscription.Amount),
	)
	return &subscription, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	subscription, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, subscriptiondomain.ErrNotFound
	}
	return subscription, nil
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}
