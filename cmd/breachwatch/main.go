package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsignal/breachwatch/api"
	"github.com/opsignal/breachwatch/internal/actions"
	"github.com/opsignal/breachwatch/internal/alerts"
	"github.com/opsignal/breachwatch/internal/breach"
	"github.com/opsignal/breachwatch/internal/confidence"
	"github.com/opsignal/breachwatch/internal/engine"
	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/internal/metrics"
	"github.com/opsignal/breachwatch/internal/resilience"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/internal/trend"
	"github.com/opsignal/breachwatch/internal/watcher"
	"github.com/opsignal/breachwatch/pkg/config"
	"github.com/opsignal/breachwatch/pkg/database"
	"github.com/opsignal/breachwatch/pkg/database/queries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()
	publisher := events.NewPublisher(bus)

	eventLogger := events.NewEventLogger(bus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	sampleStore := store.NewResilientStore(store.ResilientStoreConfig{
		Store:       store.NewPostgresStore(db),
		MaxFailures: cfg.Engine.CircuitBreaker.MaxFailures,
		Timeout:     cfg.Engine.CircuitBreaker.Timeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			metrics.Get().SetCircuitBreakerState(name, int(to))
		},
	})
	defer sampleStore.Close()

	recordRepo := queries.NewPredictionRecordRepository(db.DB)

	eng := engine.New(engineConfig(cfg.Engine), engine.Options{
		Store:      sampleStore,
		Records:    recordRepo,
		Dispatcher: alerts.NewBusDispatcher(publisher),
		Publisher:  publisher,
	})

	var watch *watcher.Watcher
	if cfg.Watch.Enabled {
		watch = watcher.New(cfg.Watch, eng)
		watch.Start()
		defer watch.Stop()
	}

	pruneDone := startRecordPruner(cfg.Records, recordRepo)
	defer close(pruneDone)

	server := api.NewServer(cfg.API, api.Deps{
		DB:          db,
		Engine:      eng,
		SampleStore: sampleStore,
		Publisher:   publisher,
		Bus:         bus,
		WSConfig:    &cfg.WebSocket,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// startRecordPruner enforces prediction record retention on a timer.
// Closing the returned channel stops it.
func startRecordPruner(cfg config.RecordsConfig, repo *queries.PredictionRecordRepository) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(cfg.PruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				pruned, err := repo.Prune(ctx, cfg.MaxAge, cfg.MaxPerMetric)
				cancel()
				if err != nil {
					logger.Errorf("Record pruning failed: %v", err)
					continue
				}
				if pruned > 0 {
					logger.Infof("Pruned %d prediction records", pruned)
				}
			}
		}
	}()

	return done
}

func engineConfig(cfg config.EngineConfig) engine.Config {
	return engine.Config{
		Lookback:      cfg.Lookback,
		MinSamples:    cfg.MinSamples,
		RecordTimeout: cfg.RecordTimeout,
		Trend: trend.Config{
			VolatilityCutoff: cfg.VolatilityCutoff,
			StabilityMargin:  cfg.StabilityMargin,
		},
		Breach: breach.Config{
			HorizonCapMinutes:           cfg.HorizonCapMinutes,
			PeakMargin:                  cfg.PeakMargin,
			VolatileTriggerRatio:        cfg.VolatileTriggerRatio,
			VolatilePeakMargin:          cfg.VolatilePeakMargin,
			VolatileTimeToBreachMinutes: cfg.VolatileTimeToBreach,
			VolatileLookbackSamples:     cfg.VolatileLookbackCount,
		},
		Confidence: confidence.Config{
			FullWindowSamples: cfg.FullWindowSamples,
		},
		Actions: actions.Config{
			UrgentWindowMinutes:  cfg.UrgentWindowMinutes,
			PrepareWindowMinutes: cfg.PrepareWindowMinutes,
		},
	}
}
