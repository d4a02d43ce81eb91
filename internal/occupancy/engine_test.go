package occupancy_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/occupancy"
	"github.com/smallbiznis/parkline/internal/occupancy/gormstore"
	"github.com/smallbiznis/parkline/internal/occupancy/memstore"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	reservationrepository "github.com/smallbiznis/parkline/internal/reservation/repository"
	"github.com/smallbiznis/parkline/internal/schedule"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	stayrepository "github.com/smallbiznis/parkline/internal/stay/repository"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	subscriptionrepository "github.com/smallbiznis/parkline/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// harness seeds the same records into both store implementations so
// every scenario doubles as a parity check.
type harness struct {
	t     *testing.T
	db    *gorm.DB
	genID *snowflake.Node

	parkingID snowflake.ID
	mem       *memstore.Store
	sql       *gormstore.Store

	stays         staydomain.Repository
	reservations  reservationdomain.Repository
	subscriptions subscriptiondomain.Repository
}

func newHarness(t *testing.T) *harness {
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

	stays := stayrepository.Provide()
	reservations := reservationrepository.Provide()
	subscriptions := subscriptionrepository.Provide()

	return &harness{
		t:         t,
		db:        db,
		genID:     node,
		parkingID: node.Generate(),
		mem:       memstore.New(),
		sql: gormstore.New(gormstore.StoreParam{
			DB:            db,
			Stays:         stays,
			Reservations:  reservations,
			Subscriptions: subscriptions,
		}),
		stays:         stays,
		reservations:  reservations,
		subscriptions: subscriptions,
	}
}

func (h *harness) addReservation(start, end time.Time, status reservationdomain.ReservationStatus) reservationdomain.Reservation {
	h.t.Helper()
	r := reservationdomain.Reservation{
		ID:          h.genID.Generate(),
		Code:        uuid.NewString(),
		UserID:      h.genID.Generate(),
		ParkingID:   h.parkingID,
		StartAt:     start,
		EndAt:       end,
		VehicleType: "car",
		Status:      status,
		CreatedAt:   start,
	}
	require.NoError(h.t, h.reservations.Insert(context.Background(), h.db, &r))
	h.mem.AddReservation(r)
	return r
}

func (h *harness) addStay(reservationID snowflake.ID, enteredAt time.Time, exitedAt *time.Time) {
	h.t.Helper()
	stay := staydomain.Stationnement{
		ID:            h.genID.Generate(),
		ReservationID: reservationID,
		EnteredAt:     enteredAt,
		ExitedAt:      exitedAt,
		CreatedAt:     enteredAt,
	}
	require.NoError(h.t, h.stays.Insert(context.Background(), h.db, &stay))
	h.mem.AddStay(stay)
}

func (h *harness) addSubscription(startDate, endDate string, slots []schedule.WeeklySlot) {
	h.t.Helper()
	sub := subscriptiondomain.Subscription{
		ID:          h.genID.Generate(),
		UserID:      h.genID.Generate(),
		ParkingID:   h.parkingID,
		StartDate:   startDate,
		EndDate:     endDate,
		WeeklySlots: datatypes.NewJSONSlice(slots),
		CreatedAt:   time.Now(),
	}
	require.NoError(h.t, h.subscriptions.Insert(context.Background(), h.db, &sub))
	h.mem.AddSubscription(sub)
}

func (h *harness) engines(now time.Time) (mem, sql *occupancy.Engine) {
	clk := clock.NewFakeClock(now)
	log := zap.NewNop()
	return occupancy.NewEngine(h.mem, clk, log), occupancy.NewEngine(h.sql, clk, log)
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestNow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// One vehicle inside, one already gone, one pending reservation.
	inside := h.addReservation(at(9, 0), at(12, 0), reservationdomain.ReservationStatusPending)
	h.addStay(inside.ID, at(9, 5), nil)

	gone := h.addReservation(at(7, 0), at(9, 0), reservationdomain.ReservationStatusPending)
	exited := at(8, 55)
	h.addStay(gone.ID, at(7, 10), &exited)

	h.addReservation(at(14, 0), at(16, 0), reservationdomain.ReservationStatusPending)

	// A subscription active on Monday mornings.
	h.addSubscription("2025-03-01", "2025-03-31", []schedule.WeeklySlot{
		{DayOfWeek: 1, Start: "09:00", End: "11:00"},
	})

	mem, sql := h.engines(at(10, 0))
	for name, engine := range map[string]*occupancy.Engine{"memstore": mem, "gormstore": sql} {
		got, err := engine.Now(ctx, h.parkingID)
		require.NoError(t, err, name)
		// The live stay and the subscription; pending reservations do
		// not hold a slot right now.
		assert.Equal(t, int64(2), got, name)
	}
}

func TestForSlot_NoDoubleCount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// A pending reservation that has been converted into a live stay
	// must count once, through the stay.
	converted := h.addReservation(at(9, 0), at(12, 0), reservationdomain.ReservationStatusPending)
	h.addStay(converted.ID, at(9, 5), nil)

	mem, sql := h.engines(at(10, 0))
	for name, engine := range map[string]*occupancy.Engine{"memstore": mem, "gormstore": sql} {
		got, err := engine.ForSlot(ctx, h.parkingID, at(10, 0), at(11, 0))
		require.NoError(t, err, name)
		assert.Equal(t, int64(1), got, name)
	}
}

func TestForSlot_StatusFiltering(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addReservation(at(10, 0), at(12, 0), reservationdomain.ReservationStatusPending)
	h.addReservation(at(10, 0), at(12, 0), reservationdomain.ReservationStatusCanceled)
	h.addReservation(at(10, 0), at(12, 0), reservationdomain.ReservationStatusExpired)

	mem, sql := h.engines(at(10, 0))
	for name, engine := range map[string]*occupancy.Engine{"memstore": mem, "gormstore": sql} {
		got, err := engine.ForSlot(ctx, h.parkingID, at(10, 0), at(12, 0))
		require.NoError(t, err, name)
		assert.Equal(t, int64(1), got, name)
	}
}

func TestParity_SlotGrid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Mixed state: live stay, closed stay, pending reservation,
	// canceled reservation, Monday-morning subscription.
	live := h.addReservation(at(9, 0), at(11, 0), reservationdomain.ReservationStatusPending)
	h.addStay(live.ID, at(9, 0), nil)

	closed := h.addReservation(at(6, 0), at(8, 0), reservationdomain.ReservationStatusPending)
	exited := at(7, 45)
	h.addStay(closed.ID, at(6, 5), &exited)

	h.addReservation(at(10, 30), at(13, 0), reservationdomain.ReservationStatusPending)
	h.addReservation(at(10, 0), at(12, 0), reservationdomain.ReservationStatusCanceled)

	h.addSubscription("2025-03-01", "2025-03-31", []schedule.WeeklySlot{
		{DayOfWeek: 1, Start: "08:00", End: "10:00"},
	})

	mem, sql := h.engines(at(9, 30))

	memNow, err := mem.Now(ctx, h.parkingID)
	require.NoError(t, err)
	sqlNow, err := sql.Now(ctx, h.parkingID)
	require.NoError(t, err)
	assert.Equal(t, memNow, sqlNow)

	for hour := 5; hour < 15; hour++ {
		t.Run(fmt.Sprintf("slot_%02d", hour), func(t *testing.T) {
			start, end := at(hour, 0), at(hour+1, 0)
			memCount, err := mem.ForSlot(ctx, h.parkingID, start, end)
			require.NoError(t, err)
			sqlCount, err := sql.ForSlot(ctx, h.parkingID, start, end)
			require.NoError(t, err)
			assert.Equal(t, memCount, sqlCount)

			memTotal, err := mem.TotalForAvailability(ctx, h.parkingID, start, end)
			require.NoError(t, err)
			assert.Equal(t, memCount, memTotal)
		})
	}
}

func TestForSlot_IgnoresOtherParkings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addReservation(at(10, 0), at(12, 0), reservationdomain.ReservationStatusPending)

	mem, sql := h.engines(at(10, 0))
	other := h.genID.Generate()
	for name, engine := range map[string]*occupancy.Engine{"memstore": mem, "gormstore": sql} {
		got, err := engine.ForSlot(ctx, other, at(10, 0), at(12, 0))
		require.NoError(t, err, name)
		assert.Zero(t, got, name)
	}
}
