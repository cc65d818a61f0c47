package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/myckhel/turfHub-sub002/config"
	"github.com/myckhel/turfHub-sub002/db"
	"github.com/myckhel/turfHub-sub002/handlers"
	"github.com/myckhel/turfHub-sub002/live"
	"github.com/myckhel/turfHub-sub002/promotion"
	"github.com/myckhel/turfHub-sub002/repositories"
	api "github.com/myckhel/turfHub-sub002/routes"
	"github.com/myckhel/turfHub-sub002/services"
	"github.com/myckhel/turfHub-sub002/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Badge storage is optional; without R2 credentials uploads are disabled
	// and everything else keeps working.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, badge uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live event hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	stageTeamRepo := repositories.NewPostgresStageTeamRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	promoRepo := repositories.NewPostgresStagePromotionRepository(dbConn)
	auditRepo := repositories.NewPostgresPromotionAuditRepository(dbConn)
	transactor := repositories.NewSQLTransactor(dbConn)
	logger.Info("repositories initialized")

	// Custom promotion handlers register here before the server starts.
	promotionRegistry := promotion.NewRegistry()

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTTokenTTL)
	teamService := services.NewTeamService(teamRepo, uploader)
	tournamentService := services.NewTournamentService(
		transactor, tournamentRepo, stageRepo, stageTeamRepo, groupRepo, teamRepo, uploader, logger,
	)
	stageService := services.NewStageService(
		transactor, stageRepo, stageTeamRepo, groupRepo, fixtureRepo, rankingRepo, hub, logger,
	)
	fixtureService := services.NewFixtureService(transactor, fixtureRepo, stageRepo, stageTeamRepo, hub, logger)
	promotionService := services.NewPromotionService(
		transactor, promotionRegistry, stageRepo, stageTeamRepo, groupRepo,
		fixtureRepo, rankingRepo, promoRepo, auditRepo, teamRepo, hub, logger,
	)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.RouterDeps{
		Auth:           handlers.NewAuthHandler(authService),
		Tournament:     handlers.NewTournamentHandler(tournamentService),
		Stage:          handlers.NewStageHandler(stageService),
		Fixture:        handlers.NewFixtureHandler(fixtureService),
		Promotion:      handlers.NewPromotionHandler(promotionService),
		Team:           handlers.NewTeamHandler(teamService),
		Live:           handlers.NewLiveHandler(hub, logger),
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
