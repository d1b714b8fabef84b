package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
	"github.com/iliyamo/restaurant-table-reservation/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("load .env: %v", err)
	}
	cfg := config.Load() // Load environment config

	logger := log.New("tables")
	logger.SetLevel(cfg.LogLevel)
	logger.SetHeader(`${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`)

	db, err := database.Open(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		logger.Info("schema is up to date")
	}

	staffRepo := repository.NewStaffRepo(db)
	if cfg.ManagerEmail != "" && cfg.ManagerPass != "" {
		created, err := staffRepo.EnsureAccount(context.Background(), cfg.ManagerEmail, cfg.ManagerPass, model.RoleManager, cfg.BcryptCost)
		if err != nil {
			logger.Fatalf("bootstrap manager: %v", err)
		}
		if created {
			logger.Infof("created manager account %s", cfg.ManagerEmail)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unreachable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	// A nil publisher turns events off in the services.
	var events service.EventPublisher
	var consumer *queue.Consumer
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, logger)
		consumer = queue.NewConsumer(cfg.AMQPURL, cfg.EventLogDir, logger)
	}

	resRepo := repository.NewReservationRepo(db)
	tableRepo := repository.NewTableRepo(db)
	seating := service.NewSeating(repository.NewSeatingStore(db, resRepo, tableRepo), events, logger)
	reservations := service.NewReservations(resRepo, booking.DefaultPolicy(cfg.Location), events, logger)
	tables := service.NewTables(tableRepo)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: `${time_rfc3339} ${id} ${method} ${uri} ${status} ${latency_human}` + "\n",
	}))

	router.RegisterRoutes(e, db)
	router.RegisterV1(e, router.Deps{
		JWTSecret:    cfg.JWTSecret,
		Redis:        rdb,
		Cache:        config.LoadCacheConfig(),
		RateLimit:    config.LoadRateLimitConfig(),
		Auth:         handler.NewAuthHandler(cfg, staffRepo, repository.NewTokenRepo(db)),
		Reservations: handler.NewReservationHandler(reservations, seating),
		Tables:       handler.NewTableHandler(tables, seating),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	addr := ":" + cfg.Port
	g.Go(func() error {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
