// Package occupancy combines three independent demand sources — live
// stays, pending reservations and recurring subscriptions — into a
// single committed-slot count per parking, without double counting.
package occupancy

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/clock"
	"go.uber.org/zap"
)

// Store is the minimal query surface the engine needs from a backing
// store. Any backend implementing it must return identical results for
// identical state; the engine is correct under all of them.
type Store interface {
	CountActiveStays(ctx context.Context, parkingID snowflake.ID) (int64, error)
	CountOverlappingStays(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error)
	CountOverlappingReservationsNotEntered(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error)
	CountActiveSubscriptionsAt(ctx context.Context, parkingID snowflake.ID, at time.Time) (int64, error)
	CountActiveSubscriptionsForSlot(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error)
}

// Engine performs pure read-combine arithmetic over a Store. It holds
// no locks: callers using ForSlot for admission control must make the
// "read occupancy, then insert reservation" pair atomic per parking —
// the booking workflow does so with a transaction and a parking row
// lock.
type Engine struct {
	store Store
	clock clock.Clock
	log   *zap.Logger
}

func NewEngine(store Store, clk clock.Clock, log *zap.Logger) *Engine {
	return &Engine{
		store: store,
		clock: clk,
		log:   log.Named("occupancy.engine"),
	}
}

// WithStore returns a copy of the engine reading from another store,
// typically one bound to an open transaction.
func (e *Engine) WithStore(store Store) *Engine {
	return &Engine{store: store, clock: e.clock, log: e.log}
}

// Now counts slots committed at the current instant: vehicles
// physically inside plus subscriptions active right now.
func (e *Engine) Now(ctx context.Context, parkingID snowflake.ID) (int64, error) {
	stays, err := e.store.CountActiveStays(ctx, parkingID)
	if err != nil {
		return 0, err
	}
	subscriptions, err := e.store.CountActiveSubscriptionsAt(ctx, parkingID, e.clock.Now())
	if err != nil {
		return 0, err
	}
	return stays + subscriptions, nil
}

// ForSlot counts slots committed anywhere over [start, end): stays
// overlapping the interval, pending reservations overlapping it that
// have not yet produced a stay, and subscriptions active over it. A
// reservation converted to a live stay appears in the stay count only.
func (e *Engine) ForSlot(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	stays, err := e.store.CountOverlappingStays(ctx, parkingID, start, end)
	if err != nil {
		return 0, err
	}
	reservations, err := e.store.CountOverlappingReservationsNotEntered(ctx, parkingID, start, end)
	if err != nil {
		return 0, err
	}
	subscriptions, err := e.store.CountActiveSubscriptionsForSlot(ctx, parkingID, start, end)
	if err != nil {
		return 0, err
	}
	return stays + reservations + subscriptions, nil
}

// TotalForAvailability is the admission-control read. It equals
// ForSlot; it must never be combined with Now for the same request,
// since the two measure overlapping populations and their sum counts
// currently active demand twice.
func (e *Engine) TotalForAvailability(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	return e.ForSlot(ctx, parkingID, start, end)
}
