// Package memstore is a document-style in-memory implementation of the
// occupancy Store contract. It exists to prove behavioral parity with
// the relational store and to back engine tests without a database.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
)

type Store struct {
	mu sync.RWMutex

	reservations  []reservationdomain.Reservation
	stays         []staydomain.Stationnement
	subscriptions []subscriptiondomain.Subscription
}

func New() *Store {
	return &Store{}
}

func (s *Store) AddReservation(r reservationdomain.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, r)
}

func (s *Store) AddStay(stay staydomain.Stationnement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stays = append(s.stays, stay)
}

func (s *Store) AddSubscription(sub subscriptiondomain.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
}

func (s *Store) CountActiveStays(_ context.Context, parkingID snowflake.ID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, stay := range s.stays {
		if stay.ExitedAt != nil {
			continue
		}
		if r := s.reservationByID(stay.ReservationID); r != nil && r.ParkingID == parkingID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOverlappingStays(_ context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, stay := range s.stays {
		r := s.reservationByID(stay.ReservationID)
		if r == nil || r.ParkingID != parkingID {
			continue
		}
		if stay.EnteredAt.Before(end) && (stay.ExitedAt == nil || stay.ExitedAt.After(start)) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOverlappingReservationsNotEntered(_ context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, r := range s.reservations {
		if r.ParkingID != parkingID || r.Status != reservationdomain.ReservationStatusPending {
			continue
		}
		if !r.StartAt.Before(end) || !r.EndAt.After(start) {
			continue
		}
		if s.hasStay(r.ID) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *Store) CountActiveSubscriptionsAt(_ context.Context, parkingID snowflake.ID, at time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, sub := range s.subscriptions {
		if sub.ParkingID == parkingID && sub.ActiveAt(at) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountActiveSubscriptionsForSlot(_ context.Context, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, sub := range s.subscriptions {
		if sub.ParkingID == parkingID && sub.ActiveForSlot(start, end) {
			count++
		}
	}
	return count, nil
}

func (s *Store) reservationByID(id snowflake.ID) *reservationdomain.Reservation {
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			return &s.reservations[i]
		}
	}
	return nil
}

func (s *Store) hasStay(reservationID snowflake.ID) bool {
	for _, stay := range s.stays {
		if stay.ReservationID == reservationID {
			return true
		}
	}
	return false
}
