package migration

import (
	"github.com/smallbiznis/parkline/internal/config"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"github.com/smallbiznis/parkline/internal/seed"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite installs rely on the model tags instead of
			// versioned SQL.
			if err := conn.AutoMigrate(
				&parkingdomain.Parking{},
				&reservationdomain.Reservation{},
				&staydomain.Stationnement{},
				&subscriptiondomain.Subscription{},
			); err != nil {
				return err
			}
		}

		if cfg.Environment == "development" {
			return seed.EnsureDemoParking(conn)
		}
		return nil
	}),
)
