package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/api"
	"github.com/bobby-s-dev/transit-air-quality/internal/config"
	apperrors "github.com/bobby-s-dev/transit-air-quality/internal/pkg/errors"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/logger"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/utils"
	"github.com/bobby-s-dev/transit-air-quality/internal/scheduler"
	"github.com/bobby-s-dev/transit-air-quality/internal/services"
	"github.com/bobby-s-dev/transit-air-quality/internal/watcher"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const reloadTimeout = 5 * time.Minute

func main() {
	bootLogger, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootLogger)

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Server.LogLevel, "transit-air-quality")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	log.Info("Starting transit air quality service")

	store := services.NewDataStore(log)
	loader := services.NewLoader(cfg.Data.PollutantFile, cfg.Data.MobilityFile, log)
	refresher := services.NewRefresher(loader, store, log)
	analyzer := services.NewAnalyzer(store, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The API answers 503 until the first load publishes a dataset.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, reloadTimeout)
		defer cancel()
		if err := refresher.Reload(loadCtx); err != nil {
			log.Error("Initial dataset load failed", zap.Error(err))
		}
	}()

	var reloadScheduler *scheduler.Scheduler
	if cfg.Scheduler.ReloadSchedule != "" {
		reloadScheduler = scheduler.NewScheduler(refresher, cfg.Scheduler.ReloadSchedule, reloadTimeout, log)
		if err := reloadScheduler.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	if cfg.Data.WatchFiles {
		fw, err := watcher.NewFileWatcher(refresher.WatchedFiles(), refresher, cfg.Data.WatchDebounce, reloadTimeout, log)
		if err != nil {
			log.Warn("File watching disabled", zap.Error(err))
		} else {
			go func() {
				if err := fw.Run(ctx); err != nil {
					log.Error("File watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	handler := api.NewHandler(analyzer, store, refresher, log)
	if reloadScheduler != nil {
		handler.SetScheduler(reloadScheduler)
	}
	app := newApp(cfg, handler, log)

	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if reloadScheduler != nil {
		reloadScheduler.Stop()
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

func newApp(cfg *config.Config, handler *api.Handler, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})
	api.SetupRoutes(app, handler, log)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	if e, ok := err.(*fiber.Error); ok {
		return utils.SendError(c, apperrors.New("HTTP_ERROR", e.Message, e.Code))
	}
	return utils.SendError(c, err)
}
