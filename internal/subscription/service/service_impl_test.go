package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/observability/metrics"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	parkingrepository "github.com/smallbiznis/parkline/internal/parking/repository"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"github.com/smallbiznis/parkline/internal/schedule"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	subscriptionrepository "github.com/smallbiznis/parkline/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	genID   *snowflake.Node
	svc     subscriptiondomain.Service
	parking *parkingdomain.Parking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&parkingdomain.Parking{},
		&reservationdomain.Reservation{},
		&staydomain.Stationnement{},
		&subscriptiondomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC))

	parkingRepo := parkingrepository.Provide()

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fakeClock,
		Tariff:  config.NewStaticTariffConfigHolder(config.DefaultTariffConfig()),
		Metrics: m,

		Repo:     subscriptionrepository.Provide(),
		Parkings: parkingRepo,
	})

	parking := &parkingdomain.Parking{
		ID:         node.Generate(),
		OwnerID:    node.Generate(),
		Name:       "Central",
		Capacity:   10,
		HourlyRate: 10.0,
		OpenTime:   "00:00",
		CloseTime:  "23:59",
		CreatedAt:  fakeClock.Now(),
		UpdatedAt:  fakeClock.Now(),
	}
	require.NoError(t, parkingRepo.Insert(context.Background(), db, parking))

	return &fixture{genID: node, svc: svc, parking: parking}
}

func mondayMornings() []schedule.WeeklySlot {
	return []schedule.WeeklySlot{{DayOfWeek: 1, Start: "09:00", End: "11:00"}}
}

func TestPurchase_EndDate(t *testing.T) {
	f := newFixture(t)

	subscription, err := f.svc.Purchase(context.Background(), subscriptiondomain.PurchaseInput{
		UserID:      f.genID.Generate(),
		ParkingID:   f.parking.ID,
		StartDate:   "2025-12-17",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	require.NoError(t, err)
	// One month from the 17th ends on the 16th.
	assert.Equal(t, "2026-01-16", subscription.EndDate)
}

func TestPurchase_PricesWeeklyOccurrences(t *testing.T) {
	f := newFixture(t)

	// 2026-01-05 is a Monday; one month spans five Mondays
	// (Jan 5, 12, 19, 26 and Feb 2), each a 2h window.
	subscription, err := f.svc.Purchase(context.Background(), subscriptiondomain.PurchaseInput{
		UserID:      f.genID.Generate(),
		ParkingID:   f.parking.ID,
		StartDate:   "2026-01-05",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-04", subscription.EndDate)
	// 5 x 120 min at 10.0/h.
	assert.InDelta(t, 100.0, subscription.Amount, 1e-9)
}

func TestPurchase_RoundsOccurrenceToSlot(t *testing.T) {
	f := newFixture(t)

	// A 20-minute window bills as two 15-minute slots per occurrence.
	subscription, err := f.svc.Purchase(context.Background(), subscriptiondomain.PurchaseInput{
		UserID:    f.genID.Generate(),
		ParkingID: f.parking.ID,
		StartDate: "2026-01-05",
		Months:    1,
		WeeklySlots: []schedule.WeeklySlot{
			{DayOfWeek: 1, Start: "09:00", End: "09:20"},
		},
	})
	require.NoError(t, err)
	// 5 x 30 min at 10.0/h.
	assert.InDelta(t, 25.0, subscription.Amount, 1e-9)
}

func TestPurchase_MidnightCrossingSlot(t *testing.T) {
	f := newFixture(t)

	// The occurrence counts wholly on its start day: 22:00 to 02:00 is
	// four hours.
	subscription, err := f.svc.Purchase(context.Background(), subscriptiondomain.PurchaseInput{
		UserID:    f.genID.Generate(),
		ParkingID: f.parking.ID,
		StartDate: "2026-01-05",
		Months:    1,
		WeeklySlots: []schedule.WeeklySlot{
			{DayOfWeek: 1, Start: "22:00", End: "02:00"},
		},
	})
	require.NoError(t, err)
	// 5 x 240 min at 10.0/h.
	assert.InDelta(t, 200.0, subscription.Amount, 1e-9)
}

func TestPurchase_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.genID.Generate()

	_, err := f.svc.Purchase(ctx, subscriptiondomain.PurchaseInput{
		UserID:      userID,
		ParkingID:   f.parking.ID,
		StartDate:   "2026-01-05",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	require.NoError(t, err)

	// [2026-02-01, 2026-02-28] intersects [2026-01-05, 2026-02-04].
	_, err = f.svc.Purchase(ctx, subscriptiondomain.PurchaseInput{
		UserID:      userID,
		ParkingID:   f.parking.ID,
		StartDate:   "2026-02-01",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrOverlappingSubscription)

	// A disjoint later range is fine.
	_, err = f.svc.Purchase(ctx, subscriptiondomain.PurchaseInput{
		UserID:      userID,
		ParkingID:   f.parking.ID,
		StartDate:   "2026-02-05",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	assert.NoError(t, err)

	// Another user may overlap freely.
	_, err = f.svc.Purchase(ctx, subscriptiondomain.PurchaseInput{
		UserID:      f.genID.Generate(),
		ParkingID:   f.parking.ID,
		StartDate:   "2026-01-05",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	assert.NoError(t, err)
}

func TestPurchase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.genID.Generate()

	cases := []struct {
		name  string
		input subscriptiondomain.PurchaseInput
		want  error
	}{
		{
			name: "zero months",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "2026-01-05", Months: 0, WeeklySlots: mondayMornings(),
			},
			want: subscriptiondomain.ErrInvalidMonths,
		},
		{
			name: "too many months",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "2026-01-05", Months: 13, WeeklySlots: mondayMornings(),
			},
			want: subscriptiondomain.ErrInvalidMonths,
		},
		{
			name: "malformed start date",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "05/01/2026", Months: 1, WeeklySlots: mondayMornings(),
			},
			want: subscriptiondomain.ErrInvalidStartDate,
		},
		{
			name: "no slots",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "2026-01-05", Months: 1,
			},
			want: subscriptiondomain.ErrMissingWeeklySlots,
		},
		{
			name: "bad weekday",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "2026-01-05", Months: 1,
				WeeklySlots: []schedule.WeeklySlot{{DayOfWeek: 8, Start: "09:00", End: "11:00"}},
			},
			want: subscriptiondomain.ErrInvalidWeeklySlot,
		},
		{
			name: "bad time",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.parking.ID,
				StartDate: "2026-01-05", Months: 1,
				WeeklySlots: []schedule.WeeklySlot{{DayOfWeek: 1, Start: "9am", End: "11:00"}},
			},
			want: subscriptiondomain.ErrInvalidWeeklySlot,
		},
		{
			name: "unknown parking",
			input: subscriptiondomain.PurchaseInput{
				UserID: userID, ParkingID: f.genID.Generate(),
				StartDate: "2026-01-05", Months: 1, WeeklySlots: mondayMornings(),
			},
			want: parkingdomain.ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Purchase(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.genID.Generate()

	purchased, err := f.svc.Purchase(ctx, subscriptiondomain.PurchaseInput{
		UserID:      userID,
		ParkingID:   f.parking.ID,
		StartDate:   "2026-01-05",
		Months:      1,
		WeeklySlots: mondayMornings(),
	})
	require.NoError(t, err)

	fetched, err := f.svc.Get(ctx, purchased.ID)
	require.NoError(t, err)
	assert.Equal(t, purchased.ID, fetched.ID)
	assert.Len(t, fetched.WeeklySlots, 1)

	_, err = f.svc.Get(ctx, f.genID.Generate())
	assert.ErrorIs(t, err, subscriptiondomain.ErrNotFound)

	subscriptions, err := f.svc.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, subscriptions, 1)
}
