package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, parking *Parking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Parking, error)
	// FindByIDForUpdate locks the parking row for the rest of the
	// surrounding transaction, serializing admission per parking.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Parking, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]Parking, error)
	Replace(ctx context.Context, db *gorm.DB, parking *Parking) error
}
