package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reservationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reservation *reservationdomain.Reservation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reservations (
			id, code, user_id, parking_id, start_at, end_at, vehicle_type,
			amount, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.Code,
		reservation.UserID,
		reservation.ParkingID,
		reservation.StartAt,
		reservation.EndAt,
		reservation.VehicleType,
		reservation.Amount,
		reservation.Status,
		reservation.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reservationdomain.Reservation, error) {
	var reservation reservationdomain.Reservation
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, user_id, parking_id, start_at, end_at, vehicle_type,
		 amount, status, created_at
		 FROM reservations WHERE id = ?`,
		id,
	).Scan(&reservation).Error
	if err != nil {
		return nil, err
	}
	if reservation.ID == 0 {
		return nil, nil
	}
	return &reservation, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*reservationdomain.Reservation, error) {
	var reservation reservationdomain.Reservation
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, user_id, parking_id, start_at, end_at, vehicle_type,
		 amount, status, created_at
		 FROM reservations WHERE code = ?`,
		code,
	).Scan(&reservation).Error
	if err != nil {
		return nil, err
	}
	if reservation.ID == 0 {
		return nil, nil
	}
	return &reservation, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]reservationdomain.Reservation, error) {
	var reservations []reservationdomain.Reservation
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, user_id, parking_id, start_at, end_at, vehicle_type,
		 amount, status, created_at
		 FROM reservations WHERE user_id = ? ORDER BY start_at DESC`,
		userID,
	).Scan(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repo) CountOverlappingNotEntered(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM reservations r
		 WHERE r.parking_id = ?
		   AND r.status = ?
		   AND r.start_at < ?
		   AND r.end_at > ?
		   AND NOT EXISTS (
			   SELECT 1 FROM stationnements s
			   WHERE s.reservation_id = r.id
		   )`,
		parkingID,
		reservationdomain.ReservationStatusPending,
		end,
		start,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) MarkCanceled(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE reservations
		 SET status = ?
		 WHERE id = ?
		   AND status = ?
		   AND NOT EXISTS (
			   SELECT 1 FROM stationnements s
			   WHERE s.reservation_id = reservations.id
		   )`,
		reservationdomain.ReservationStatusCanceled,
		id,
		reservationdomain.ReservationStatusPending,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ExpireLapsed(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE reservations
		 SET status = ?
		 WHERE id IN (
			 SELECT id FROM (
				 SELECT r.id
				 FROM reservations r
				 WHERE r.status = ?
				   AND r.end_at <= ?
				   AND NOT EXISTS (
					   SELECT 1 FROM stationnements s
					   WHERE s.reservation_id = r.id
				   )
				 ORDER BY r.end_at ASC
				 LIMIT ?
			 ) lapsed
		 )`,
		reservationdomain.ReservationStatusExpired,
		reservationdomain.ReservationStatusPending,
		now,
		limit,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
