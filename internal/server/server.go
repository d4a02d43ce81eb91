// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/parkline/internal/authorization"
	"github.com/smallbiznis/parkline/internal/config"
	"github.com/smallbiznis/parkline/internal/lock"
	"github.com/smallbiznis/parkline/internal/observability"
	"github.com/smallbiznis/parkline/internal/occupancy"
	"github.com/smallbiznis/parkline/internal/occupancy/gormstore"
	"github.com/smallbiznis/parkline/internal/parking"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	"github.com/smallbiznis/parkline/internal/reservation"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
	"github.com/smallbiznis/parkline/internal/scheduler"
	"github.com/smallbiznis/parkline/internal/stay"
	staydomain "github.com/smallbiznis/parkline/internal/stay/domain"
	"github.com/smallbiznis/parkline/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	observability.Module,
	fx.Provide(registerGin),
	authorization.Module,
	lock.Module,
	parking.Module,
	reservation.Module,
	stay.Module,
	subscription.Module,
	gormstore.Module,
	occupancy.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	parkingSvc      parkingdomain.Service
	reservationSvc  reservationdomain.Service
	staySvc         staydomain.Service
	subscriptionSvc subscriptiondomain.Service
	authzSvc        authorization.Service
	occupancySvc    *occupancy.Engine
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	ParkingSvc      parkingdomain.Service
	ReservationSvc  reservationdomain.Service
	StaySvc         staydomain.Service
	SubscriptionSvc subscriptiondomain.Service
	AuthzSvc        authorization.Service
	OccupancySvc    *occupancy.Engine
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		genID:  p.GenID,

		parkingSvc:      p.ParkingSvc,
		reservationSvc:  p.ReservationSvc,
		staySvc:         p.StaySvc,
		subscriptionSvc: p.SubscriptionSvc,
		authzSvc:        p.AuthzSvc,
		occupancySvc:    p.OccupancySvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.CallerRequired())

	// -------- Parkings --------
	api.POST("/parkings", s.CreateParking)
	api.GET("/parkings", s.ListParkings)
	api.GET("/parkings/:id", s.GetParkingByID)
	api.PUT("/parkings/:id", s.ReplaceParking)
	api.GET("/parkings/:id/occupancy", s.GetOccupancy)
	api.GET("/parkings/:id/revenue", s.GetRevenue)

	// -------- Reservations --------
	api.POST("/reservations", s.BookReservation)
	api.GET("/reservations", s.ListReservations)
	api.GET("/reservations/:id", s.GetReservationByID)
	api.POST("/reservations/:id/cancel", s.CancelReservation)

	// -------- Stays --------
	api.POST("/stays/enter", s.EnterStay)
	api.POST("/stays/exit", s.ExitStay)
	api.GET("/stays/:id", s.GetStayByID)

	// -------- Subscriptions --------
	api.POST("/subscriptions", s.PurchaseSubscription)
	api.GET("/subscriptions", s.ListSubscriptions)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
}
