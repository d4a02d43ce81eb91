package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, stay *Stationnement) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Stationnement, error)
	FindActiveByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (*Stationnement, error)
	ExistsByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (bool, error)

	// Close writes exited_at, billed_amount and penalty_amount in a
	// single guarded UPDATE; reports false when the stay was already
	// closed.
	Close(ctx context.Context, db *gorm.DB, id snowflake.ID, exitedAt time.Time, billed, penalty float64) (bool, error)

	// CountActive counts unclosed stays for a parking.
	CountActive(ctx context.Context, db *gorm.DB, parkingID snowflake.ID) (int64, error)
	// CountOverlapping counts stays whose presence overlaps [start, end).
	CountOverlapping(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, start, end time.Time) (int64, error)

	// Revenue aggregates closed stays with exit in [from, to).
	Revenue(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, from, to time.Time) (*RevenueReport, error)
}
