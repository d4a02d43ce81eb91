package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() parkingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, parking *parkingdomain.Parking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO parkings (
			id, owner_id, name, capacity, hourly_rate, open_time, close_time,
			opening_days, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		parking.ID,
		parking.OwnerID,
		parking.Name,
		parking.Capacity,
		parking.HourlyRate,
		parking.OpenTime,
		parking.CloseTime,
		parking.OpeningDays,
		parking.CreatedAt,
		parking.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*parkingdomain.Parking, error) {
	var parking parkingdomain.Parking
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, name, capacity, hourly_rate, open_time, close_time,
		 opening_days, created_at, updated_at
		 FROM parkings WHERE id = ?`,
		id,
	).Scan(&parking).Error
	if err != nil {
		return nil, err
	}
	if parking.ID == 0 {
		return nil, nil
	}
	return &parking, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*parkingdomain.Parking, error) {
	query := `SELECT id, owner_id, name, capacity, hourly_rate, open_time, close_time,
	 opening_days, created_at, updated_at
	 FROM parkings WHERE id = ?`
	// SQLite has no row locks; its single-writer model serializes the
	// surrounding transaction anyway.
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var parking parkingdomain.Parking
	err := db.WithContext(ctx).Raw(query, id).Scan(&parking).Error
	if err != nil {
		return nil, err
	}
	if parking.ID == 0 {
		return nil, nil
	}
	return &parking, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]parkingdomain.Parking, error) {
	var parkings []parkingdomain.Parking
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, name, capacity, hourly_rate, open_time, close_time,
		 opening_days, created_at, updated_at
		 FROM parkings WHERE owner_id = ? ORDER BY created_at ASC`,
		ownerID,
	).Scan(&parkings).Error
	if err != nil {
		return nil, err
	}
	return parkings, nil
}

func (r *repo) Replace(ctx context.Context, db *gorm.DB, parking *parkingdomain.Parking) error {
	return db.WithContext(ctx).Exec(
		`UPDATE parkings
		 SET owner_id = ?, name = ?, capacity = ?, hourly_rate = ?, open_time = ?,
		     close_time = ?, opening_days = ?, updated_at = ?
		 WHERE id = ?`,
		parking.OwnerID,
		parking.Name,
		parking.Capacity,
		parking.HourlyRate,
		parking.OpenTime,
		parking.CloseTime,
		parking.OpeningDays,
		parking.UpdatedAt,
		parking.ID,
	).Error
}
