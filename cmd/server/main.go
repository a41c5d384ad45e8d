package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/config"
	"github.com/Xebarter/Leap-sub002/internal/repository/mongodb"
	"github.com/Xebarter/Leap-sub002/internal/repository/sheets"
	"github.com/Xebarter/Leap-sub002/internal/scheduler"
	"github.com/Xebarter/Leap-sub002/internal/server/handlers"
	"github.com/Xebarter/Leap-sub002/internal/server/router"
	buildingsvc "github.com/Xebarter/Leap-sub002/internal/service/building"
	"github.com/Xebarter/Leap-sub002/internal/service/notify"
	occupancysvc "github.com/Xebarter/Leap-sub002/internal/service/occupancy"
	whatsappclient "github.com/Xebarter/Leap-sub002/pkg/clients/whatsapp"
	"github.com/Xebarter/Leap-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	mongoRepo, err := mongodb.NewMongoDBRepository(initCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(initCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	var ledger sheets.Ledger = sheets.NopLedger{}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(initCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		ledger = sheets.NewSheetLedger(sheetsRepo)
		baseLogger.Info("occupancy ledger export enabled")
	} else {
		baseLogger.Warn("google sheet id missing, occupancy ledger export disabled")
	}

	var notifier notify.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = notify.NewWhatsAppNotifier(cfg.WhatsApp, whatsClient, logger.Named(baseLogger, "svc.notify"))
		baseLogger.Info("whatsapp reminders enabled")
	} else {
		notifier = notify.NewLogNotifier(logger.Named(baseLogger, "svc.notify"))
		baseLogger.Warn("whatsapp token missing, reminders will only be logged")
	}

	buildingSvc := buildingsvc.NewService(mongoRepo, buildingsvc.NewDraftStore(), logger.Named(baseLogger, "svc.building"))
	occupancySvc := occupancysvc.NewService(mongoRepo, ledger, notifier, logger.Named(baseLogger, "svc.occupancy"))

	engine := router.New(
		handlers.NewBuildingHandler(buildingSvc, logger.Named(baseLogger, "handlers.building")),
		handlers.NewOccupancyHandler(occupancySvc, logger.Named(baseLogger, "handlers.occupancy")),
		logger.Named(baseLogger, "router"),
	)

	sched, err := scheduler.NewScheduler(*cfg, occupancySvc, buildingSvc, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
