package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/billing"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() staydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, stay *staydomain.Stationnement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stationnements (
			id, reservation_id, entered_at, exited_at, billed_amount,
			penalty_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stay.ID,
		stay.ReservationID,
		stay.EnteredAt,
		stay.ExitedAt,
		stay.BilledAmount,
		stay.PenaltyAmount,
		stay.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*staydomain.Stationnement, error) {
	var stay staydomain.Stationnement
	err := db.WithContext(ctx).Raw(
		`SELECT id, reservation_id, entered_at, exited_at, billed_amount,
		 penalty_amount, created_at
		 FROM stationnements WHERE id = ?`,
		id,
	).Scan(&stay).Error
	if err != nil {
		return nil, err
	}
	if stay.ID == 0 {
		return nil, nil
	}
	return &stay, nil
}

func (r *repo) FindActiveByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (*staydomain.Stationnement, error) {
	var stay staydomain.Stationnement
	err := db.WithContext(ctx).Raw(
		`SELECT id, reservation_id, entered_at, exited_at, billed_amount,
		 penalty_amount, created_at
		 FROM stationnements
		 WHERE reservation_id = ? AND exited_at IS NULL
		 LIMIT 1`,
		reservationID,
	).Scan(&stay).Error
	if err != nil {
		return nil, err
	}
	if stay.ID == 0 {
		return nil, nil
	}
	return &stay, nil
}

func (r *repo) ExistsByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM stationnements WHERE reservation_id = ?`,
		reservationID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Close(ctx context.Context, db *gorm.DB, id snowflake.ID, exitedAt time.Time, billed, penalty float64) (bool, error) {
	// The exited_at IS NULL guard makes the close idempotent-unsafe on
	// purpose: a second close must fail, not overwrite amounts.
	result := db.WithContext(ctx).Exec(
		`UPDATE stationnements
		 SET exited_at = ?, billed_amount = ?, penalty_amount = ?
		 WHERE id = ? AND exited_at IS NULL`,
		exitedAt,
		billed,
		penalty,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, parkingID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM stationnements s
		 JOIN reservations r ON r.id = s.reservation_id
		 WHERE r.parking_id = ? AND s.exited_at IS NULL`,
		parkingID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) CountOverlapping(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, start, end time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM stationnements s
		 JOIN reservations r ON r.id = s.reservation_id
		 WHERE r.parking_id = ?
		   AND s.entered_at < ?
		   AND (s.exited_at IS NULL OR s.exited_at > ?)`,
		parkingID,
		end,
		start,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Revenue(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, from, to time.Time) (*staydomain.RevenueReport, error) {
	var row struct {
		ExitCount    int64
		TotalBilled  float64
		TotalPenalty float64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS exit_count,
		        COALESCE(SUM(s.billed_amount), 0) AS total_billed,
		        COALESCE(SUM(s.penalty_amount), 0) AS total_penalty
		 FROM stationnements s
		 JOIN reservations r ON r.id = s.reservation_id
		 WHERE r.parking_id = ?
		   AND s.exited_at >= ? AND s.exited_at < ?`,
		parkingID,
		from,
		to,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &staydomain.RevenueReport{
		ExitCount:    row.ExitCount,
		TotalBilled:  billing.Round2(row.TotalBilled),
		TotalPenalty: billing.Round2(row.TotalPenalty),
		Total:        billing.Round2(row.TotalBilled + row.TotalPenalty),
	}, nil
}
