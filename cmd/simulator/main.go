package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opsignal/breachwatch/internal/logger"
	"github.com/opsignal/breachwatch/internal/simulator"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/pkg/config"
	"github.com/opsignal/breachwatch/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	logLevel := flag.String("log-level", "info", "log level")
	metrics := flag.String("metrics", "api.cpu_usage:50:steady,api.memory_usage:60:gradual_rise", "comma-separated metric specs (name:base:pattern)")
	interval := flag.Duration("interval", time.Minute, "sample emission interval")
	backfill := flag.Int("backfill", 0, "historical samples to seed per metric before streaming")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting sample simulator")

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	specs, err := parseMetricSpecs(*metrics)
	if err != nil {
		return err
	}

	gen := simulator.New(simulator.Config{
		Metrics:  specs,
		Interval: *interval,
	}, store.NewPostgresStore(db))

	if *backfill > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		for _, spec := range specs {
			if err := gen.Backfill(ctx, spec, *backfill); err != nil {
				return fmt.Errorf("backfill failed for %s: %w", spec.Name, err)
			}
			logger.WithMetric(spec.Name).Infof("Backfilled %d samples", *backfill)
		}
	}

	gen.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down simulator")
	gen.Stop()
	return nil
}

func parseMetricSpecs(raw string) ([]simulator.MetricSpec, error) {
	var specs []simulator.MetricSpec

	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid metric spec %q, expected name:base:pattern", part)
		}

		var base float64
		if _, err := fmt.Sscanf(fields[1], "%f", &base); err != nil {
			return nil, fmt.Errorf("invalid base value in %q", part)
		}

		specs = append(specs, simulator.MetricSpec{
			Name:      fields[0],
			BaseValue: base,
			Jitter:    base * 0.02,
			Pattern:   simulator.ParsePattern(fields[2]),
		})
	}

	return specs, nil
}
