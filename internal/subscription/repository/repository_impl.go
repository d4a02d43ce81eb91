package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"github.com/smallbiznis/parkline/pkg/db/option"
	"github.com/smallbiznis/parkline/pkg/repository"
	"gorm.io/gorm"
)

// Simple lookups go through the generic store; the date-range queries
// need raw SQL.
type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return repository.ProvideStore[subscriptiondomain.Subscription](db).Create(ctx, subscription)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	return repository.ProvideStore[subscriptiondomain.Subscription](db).
		FindOne(ctx, &subscriptiondomain.Subscription{ID: id})
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	rows, err := repository.ProvideStore[subscriptiondomain.Subscription](db).
		Find(ctx, &subscriptiondomain.Subscription{UserID: userID}, option.WithOrder("start_date DESC"))
	if err != nil {
		return nil, err
	}
	subscriptions := make([]subscriptiondomain.Subscription, 0, len(rows))
	for _, row := range rows {
		subscriptions = append(subscriptions, *row)
	}
	return subscriptions, nil
}

func (r *repo) ExistsOverlapping(ctx context.Context, db *gorm.DB, userID, parkingID snowflake.ID, startDate, endDate string) (bool, error) {
	// ISO dates compare correctly as text across all three dialects.
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM subscriptions
		 WHERE user_id = ? AND parking_id = ?
		   AND start_date <= ? AND end_date >= ?`,
		userID,
		parkingID,
		endDate,
		startDate,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, startDate, endDate string) ([]subscriptiondomain.Subscription, error) {
	var subscriptions []subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, parking_id, start_date, end_date, weekly_slots,
		 amount, created_at
		 FROM subscriptions
		 WHERE parking_id = ?
		   AND start_date <= ? AND end_date >= ?`,
		parkingID,
		endDate,
		startDate,
	).Scan(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}
