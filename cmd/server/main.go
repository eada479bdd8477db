package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SkyOps/skyops/internal/api"
	"github.com/SkyOps/skyops/internal/assignment"
	"github.com/SkyOps/skyops/internal/auth"
	"github.com/SkyOps/skyops/internal/config"
	"github.com/SkyOps/skyops/internal/conflict"
	"github.com/SkyOps/skyops/internal/controller"
	"github.com/SkyOps/skyops/internal/database"
	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/logging"
	"github.com/SkyOps/skyops/internal/metrics"
	"github.com/SkyOps/skyops/internal/models"
	"github.com/SkyOps/skyops/internal/reassignment"
	"github.com/SkyOps/skyops/internal/scheduler"
	"github.com/SkyOps/skyops/internal/server"
	_ "github.com/lib/pq"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting SkyOps")

	ctx := context.Background()

	// Pick the roster backend: Postgres when DATABASE_URL is set, otherwise
	// the seeded in-memory roster for local runs and demos.
	var store models.RosterStore
	if cfg.Database.URL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Database.URL

		logger.Info("connecting to database")
		db, err := database.Connect(ctx, dbCfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.EnsureSchema(ctx, db); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected")

		store = database.NewPostgresRoster(db, logger)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory roster")
		store = database.NewSeededRoster()
	}

	// Core engines
	conflictEngine := conflict.NewEngine()
	decisionEngine := decision.NewEngine()
	manager := assignment.NewManager(decisionEngine, logger)
	urgent := reassignment.NewService(store, conflictEngine, decisionEngine, manager, logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	ctrl, err := controller.New(ctx, store, conflictEngine, decisionEngine, manager, urgent, collector, logger)
	if err != nil {
		logger.Error("failed to init controller", "error", err)
		os.Exit(1)
	}

	// Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	authConfig := auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		AdminPassword: cfg.Auth.AdminPassword,
		TokenDuration: cfg.Auth.TokenTTL,
	}
	if authConfig.JWTSecret == "" {
		authConfig.JWTSecret = "change-this-secret"
		logger.Warn("JWT_SECRET not set, using default")
	}
	if authConfig.AdminPassword == "" {
		authConfig.AdminPassword = "admin"
		logger.Warn("ADMIN_PASSWORD not set, using default")
	}

	logger.Info("setting up REST API")
	api.SetupRoutes(mux, ctrl, authConfig, cfg.Decision.TopN, logger)

	// Background urgent-reassignment sweep
	var sweeper *scheduler.ReassignmentScheduler
	if cfg.Scheduler.Enabled {
		sweeper = scheduler.NewReassignmentScheduler(ctrl, cfg.Scheduler.Interval, logger)
		go sweeper.Start(ctx)
	} else {
		logger.Info("reassignment sweep disabled")
	}

	limiter := api.NewClientLimiter(20, 40)
	handler := limiter.Middleware(collector.InstrumentHandler(mux))

	srv := server.New(cfg.Server, logger, handler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("SkyOps started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if sweeper != nil {
		sweeper.Stop()
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
