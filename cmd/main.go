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

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"

	"github.com/schoolsports/tournament-engine/brackets"
	"github.com/schoolsports/tournament-engine/config"
	"github.com/schoolsports/tournament-engine/db"
	"github.com/schoolsports/tournament-engine/handlers"
	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/middleware"
	"github.com/schoolsports/tournament-engine/repositories"
	"github.com/schoolsports/tournament-engine/routes"
	"github.com/schoolsports/tournament-engine/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("sentry initialized")
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	hub := live.NewHub(logger)

	uow := repositories.NewUnitOfWork(dbConn)
	schoolRepo := repositories.NewPostgresSchoolRepository()
	teamRepo := repositories.NewPostgresTeamRepository()
	participationRepo := repositories.NewPostgresParticipationRepository()
	tournamentRepo := repositories.NewPostgresTournamentRepository()
	fixtureRepo := repositories.NewPostgresFixtureRepository()
	resultRepo := repositories.NewPostgresResultRepository()
	scoreLogRepo := repositories.NewPostgresScoreLogRepository()
	eventRepo := repositories.NewPostgresEventRepository()
	logger.Info("repositories initialized")

	generator := brackets.NewGenerator(nil)

	tournamentService := services.NewTournamentService(
		uow,
		tournamentRepo,
		schoolRepo,
		teamRepo,
		participationRepo,
		fixtureRepo,
		resultRepo,
		eventRepo,
		generator,
		logger,
	)
	fixtureService := services.NewFixtureService(
		uow,
		tournamentRepo,
		fixtureRepo,
		participationRepo,
		resultRepo,
		eventRepo,
		hub,
		logger,
	)
	scoreService := services.NewScoreService(uow, fixtureRepo, resultRepo, scoreLogRepo, hub, logger)
	bracketService := services.NewBracketService(uow, tournamentRepo, fixtureRepo, participationRepo, logger)
	schoolService := services.NewSchoolService(uow, schoolRepo, logger)
	eventService := services.NewEventService(uow, eventRepo, logger)
	logger.Info("services initialized")

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := routes.InitRoutes(routes.Handlers{
		Tournaments: handlers.NewTournamentHandler(tournamentService, bracketService),
		Fixtures:    handlers.NewFixtureHandler(fixtureService, scoreService),
		Schools:     handlers.NewSchoolHandler(schoolService),
		Events:      handlers.NewEventHandler(eventService),
		Websockets:  handlers.NewWebsocketHandler(hub, logger),
	}, auth, cfg.CORSAllowedOrigins)
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
