// Package seed bootstraps a demo facility so a fresh self-hosted
// install is usable immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoParkingName = "Demo Parking"
	demoCapacity    = 50
	demoHourlyRate  = 4.0
	demoOpenTime    = "06:00"
	demoCloseTime   = "23:00"
)

// EnsureDemoParking seeds one open-every-day facility when the table
// is empty. Existing data is never touched.
func EnsureDemoParking(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&parkingdomain.Parking{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		parking := parkingdomain.Parking{
			ID:          node.Generate(),
			OwnerID:     node.Generate(),
			Name:        demoParkingName,
			Capacity:    demoCapacity,
			HourlyRate:  demoHourlyRate,
			OpenTime:    demoOpenTime,
			CloseTime:   demoCloseTime,
			OpeningDays: datatypes.NewJSONSlice([]int{1, 2, 3, 4, 5, 6, 7}),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.WithContext(ctx).Create(&parking).Error
	})
}
