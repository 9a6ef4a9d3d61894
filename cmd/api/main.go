package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/config"
	"github.com/haulzy/haulzy-backend/internal/bootstrap"
	cronjob "github.com/haulzy/haulzy-backend/internal/cron"
	"github.com/haulzy/haulzy-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.App.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.App.TimeZone)
		if err != nil {
			logger.Fatal("invalid time zone", zap.String("tz", cfg.App.TimeZone), zap.Error(err))
		}
		time.Local = loc
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := bootstrap.OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Warn("closing backends", zap.Error(err))
		}
	}()

	services := bootstrap.NewServices(cfg, backends, logger)
	router := bootstrap.BuildRouter(services.RouterDeps(cfg, backends, logger))

	scheduler := cronjob.NewScheduler(cfg.Cron.SnapshotSpec, time.Local, services.Dashboard, logger.Named("cron"))
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
