package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/observability/metrics"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	reservationrepository "github.com/smallbiznis/parkline/internal/reservation/repository"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	stayrepository "github.com/smallbiznis/parkline/internal/stay/repository"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	genID   *snowflake.Node
	clock   *clock.FakeClock
	sweeper *Sweeper
	repo    reservationdomain.Repository
}

func newFixture(t *testing.T, batchSize int) *fixture {
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
	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	repo := reservationrepository.Provide()
	sweeper := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        fakeClock,
		Metrics:      m,
		Reservations: repo,
		Config:       Config{BatchSize: batchSize},
	})

	return &fixture{
		db:      db,
		genID:   node,
		clock:   fakeClock,
		sweeper: sweeper,
		repo:    repo,
	}
}

func (f *fixture) seedReservation(t *testing.T, end time.Time, status reservationdomain.ReservationStatus) *reservationdomain.Reservation {
	t.Helper()
	r := &reservationdomain.Reservation{
		ID:          f.genID.Generate(),
		Code:        uuid.NewString(),
		UserID:      f.genID.Generate(),
		ParkingID:   f.genID.Generate(),
		StartAt:     end.Add(-time.Hour),
		EndAt:       end,
		VehicleType: "car",
		Status:      status,
		CreatedAt:   end.Add(-2 * time.Hour),
	}
	require.NoError(t, f.repo.Insert(context.Background(), f.db, r))
	return r
}

func (f *fixture) status(t *testing.T, id snowflake.ID) reservationdomain.ReservationStatus {
	t.Helper()
	r, err := f.repo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r.Status
}

func TestRunOnce_ExpiresLapsed(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	now := f.clock.Now()

	lapsed := f.seedReservation(t, now.Add(-time.Hour), reservationdomain.ReservationStatusPending)
	future := f.seedReservation(t, now.Add(time.Hour), reservationdomain.ReservationStatusPending)
	canceled := f.seedReservation(t, now.Add(-time.Hour), reservationdomain.ReservationStatusCanceled)

	// A lapsed reservation whose vehicle entered is a live stay, not a
	// no-show; the sweep must leave it alone.
	entered := f.seedReservation(t, now.Add(-time.Hour), reservationdomain.ReservationStatusPending)
	require.NoError(t, stayrepository.Provide().Insert(ctx, f.db, &staydomain.Stationnement{
		ID:            f.genID.Generate(),
		ReservationID: entered.ID,
		EnteredAt:     now.Add(-90 * time.Minute),
		CreatedAt:     now.Add(-90 * time.Minute),
	}))

	expired, err := f.sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	assert.Equal(t, reservationdomain.ReservationStatusExpired, f.status(t, lapsed.ID))
	assert.Equal(t, reservationdomain.ReservationStatusPending, f.status(t, future.ID))
	assert.Equal(t, reservationdomain.ReservationStatusCanceled, f.status(t, canceled.ID))
	assert.Equal(t, reservationdomain.ReservationStatusPending, f.status(t, entered.ID))
}

func TestRunOnce_DrainsInBatches(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	now := f.clock.Now()

	for i := 0; i < 5; i++ {
		f.seedReservation(t, now.Add(-time.Duration(i+1)*time.Minute), reservationdomain.ReservationStatusPending)
	}

	expired, err := f.sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), expired)

	// A second sweep finds nothing.
	expired, err = f.sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestRunOnce_EndAtBoundary(t *testing.T) {
	f := newFixture(t, 100)
	now := f.clock.Now()

	// end_at == now counts as lapsed.
	boundary := f.seedReservation(t, now, reservationdomain.ReservationStatusPending)

	expired, err := f.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, reservationdomain.ReservationStatusExpired, f.status(t, boundary.ID))
}
