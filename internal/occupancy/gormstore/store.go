// Package gormstore implements the occupancy Store contract over the
// relational repositories.
package gormstore

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/occupancy"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"github.com/smallbiznis/parkline/internal/schedule"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB

	stays         staydomain.Repository
	reservations  reservationdomain.Repository
	subscriptions subscriptiondomain.Repository
}

type StoreParam struct {
	fx.In

	DB            *gorm.DB
	Stays         staydomain.Repository
	Reservations  reservationdomain.Repository
	Subscriptions subscriptiondomain.Repository
}

func New(p StoreParam) *Store {
	return &Store{
		db:            p.DB,
		stays:         p.Stays,
		reservations:  p.Reservations,
		subscriptions: p.Subscriptions,
	}
}

// Provide exposes the store under the engine contract.
func Provide(p StoreParam) occupancy.Store {
	return New(p)
}

// WithTx binds the store to an open transaction so admission-control
// reads observe, and are serialized with, the surrounding writes.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{
		db:            tx,
		stays:         s.stays,
		reservations:  s.reservations,
		subscriptions: s.subscriptions,
	}
}

func (s *Store) CountActiveStays(ctx context.Context, parkingID snowflake.ID) (int64, error) {
	return s.stays.CountActive(ctx, s.db, parkingID)
}

func (s *Store) CountOverlappingStays(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	return s.stays.CountOverlapping(ctx, s.db, parkingID, start, end)
}

func (s *Store) CountOverlappingReservationsNotEntered(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	return s.reservations.CountOverlappingNotEntered(ctx, s.db, parkingID, start, end)
}

func (s *Store) CountActiveSubscriptionsAt(ctx context.Context, parkingID snowflake.ID, at time.Time) (int64, error) {
	date := at.Format(schedule.DateLayout)
	candidates, err := s.subscriptions.ListCandidates(ctx, s.db, parkingID, date, date)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, sub := range candidates {
		if sub.ActiveAt(at) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountActiveSubscriptionsForSlot(ctx context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	// Candidate filtering happens on date intersection in SQL; the
	// weekly-slot matcher decides actual activity per candidate.
	candidates, err := s.subscriptions.ListCandidates(
		ctx, s.db, parkingID,
		start.Format(schedule.DateLayout),
		end.Format(schedule.DateLayout),
	)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, sub := range candidates {
		if sub.ActiveForSlot(start, end) {
			count++
		}
	}
	return count, nil
}
