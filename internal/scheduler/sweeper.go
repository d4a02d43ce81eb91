// Package scheduler runs the reservation expiry sweep: pending
// reservations whose window ended without the vehicle ever entering
// are moved to EXPIRED so they stop holding capacity.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/parkline/internal/clock"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/observability/metrics"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	return c
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Metrics      *metrics.Metrics
	Reservations reservationdomain.Repository
	Config       Config `optional:"true"`
}

type Sweeper struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	metrics      *metrics.Metrics
	reservations reservationdomain.Repository
}

func New(p Params) *Sweeper {
	return &Sweeper{
		db:           p.DB,
		log:          p.Log.Named("scheduler.sweeper"),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		metrics:      p.Metrics,
		reservations: p.Reservations,
	}
}

// RunOnce sweeps in batches until no lapsed reservation remains.
// Returns the number of reservations expired.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		affected, err := s.reservations.ExpireLapsed(ctx, s.db, now, s.cfg.BatchSize)
		if err != nil {
			return total, err
		}
		total += affected
		if affected < int64(s.cfg.BatchSize) {
			break
		}
	}
	if total > 0 {
		s.metrics.RecordReservationsExpired(ctx, total)
		s.log.Info("reservations expired", zap.Int64("count", total))
	}
	return total, nil
}

func (s *Sweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("expiry sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func provideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: time.Duration(cfg.SchedulerIntervalSeconds) * time.Second,
		BatchSize:   cfg.SchedulerBatchSize,
	}
}

func run(lc fx.Lifecycle, sweeper *Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sweeper.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(provideConfig, New),
	fx.Invoke(run),
)
