package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reservation *Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reservation, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Reservation, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Reservation, error)

	// CountOverlappingNotEntered counts pending reservations whose
	// window overlaps [start, end) and that have not yet produced a
	// stationnement. Reservations already converted to a live stay are
	// excluded so the same demand is never counted twice.
	CountOverlappingNotEntered(ctx context.Context, db *gorm.DB, parkingID snowflake.ID, start, end time.Time) (int64, error)

	// MarkCanceled transitions PENDING -> CANCELED; reports whether a
	// row changed.
	MarkCanceled(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// ExpireLapsed transitions PENDING reservations whose window ended
	// before now and that never produced a stay to EXPIRED. Returns the
	// number of rows affected.
	ExpireLapsed(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error)
}
