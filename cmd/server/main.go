package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mandi/server/config"
	"mandi/server/internal/api"
	"mandi/server/internal/database"
	"mandi/server/internal/prices"
	"mandi/server/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.PriceAPI.Key == "" || cfg.Geocoder.Key == "" {
		logger.Warn("PRICE_API_KEY or GEOCODER_API_KEY is empty, upstream calls will be rejected")
	}

	var db *database.Database
	if cfg.Cache.Backend == config.CacheBackendSQLite {
		logger.WithField("dsn", cfg.Cache.SQLiteDSN).Info("Using in-memory SQLite geocode cache")
		db, err = database.NewDatabase(cfg.Cache.SQLiteDSN)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()

		logger.Info("Running database migrations...")
		if err := db.RunMigrations(); err != nil {
			logger.WithError(err).Fatal("Failed to run database migrations")
		}
	}

	fetcher := prices.NewFetcher(logger, prices.FetcherOptions{
		URL:      cfg.PriceAPI.URL,
		Key:      cfg.PriceAPI.Key,
		PageSize: cfg.PriceAPI.PageSize,
		Timeout:  cfg.PriceAPI.Timeout,
	})

	sessions, err := session.NewManager(cfg, fetcher, db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize session manager")
	}
	defer sessions.CloseAll()

	janitor := session.NewJanitor(sessions, cfg.Session.SweepInterval, logger)
	janitor.Start()
	defer janitor.Stop()

	handler := api.NewHandler(sessions, fetcher, logger)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
