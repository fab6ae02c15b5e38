package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Engine validation
	if c.Engine.Lookback <= 0 {
		errs = append(errs, errors.New("engine.lookback must be positive"))
	}
	if c.Engine.MinSamples < 2 {
		errs = append(errs, errors.New("engine.min_samples must be at least 2"))
	}
	if c.Engine.FullWindowSamples < c.Engine.MinSamples {
		errs = append(errs, errors.New("engine.full_window_samples must be at least engine.min_samples"))
	}
	if c.Engine.VolatilityCutoff <= 0 || c.Engine.VolatilityCutoff >= 1 {
		errs = append(errs, errors.New("engine.volatility_cutoff must be between 0 and 1"))
	}
	if c.Engine.HorizonCapMinutes <= 0 {
		errs = append(errs, errors.New("engine.horizon_cap_minutes must be positive"))
	}
	if c.Engine.PeakMargin < 1.0 {
		errs = append(errs, errors.New("engine.peak_margin must be at least 1.0"))
	}
	if c.Engine.VolatileTriggerRatio <= 0 || c.Engine.VolatileTriggerRatio > 1 {
		errs = append(errs, errors.New("engine.volatile_trigger_ratio must be in (0, 1]"))
	}
	if c.Engine.UrgentWindowMinutes >= c.Engine.PrepareWindowMinutes {
		errs = append(errs, errors.New("engine.urgent_window_minutes must be less than engine.prepare_window_minutes"))
	}

	// Records validation
	if c.Records.MaxAge <= 0 {
		errs = append(errs, errors.New("records.max_age must be positive"))
	}
	if c.Records.MaxPerMetric <= 0 {
		errs = append(errs, errors.New("records.max_per_metric must be positive"))
	}

	// Watcher validation
	if c.Watch.Enabled {
		if c.Watch.Interval <= 0 {
			errs = append(errs, errors.New("watch.interval must be positive"))
		}
		if len(c.Watch.Metrics) == 0 {
			errs = append(errs, errors.New("watch.metrics must not be empty when watch is enabled"))
		}
		for i, m := range c.Watch.Metrics {
			if m.Name == "" {
				errs = append(errs, fmt.Errorf("watch.metrics[%d].name is required", i))
			}
			if m.Threshold <= 0 {
				errs = append(errs, fmt.Errorf("watch.metrics[%d].threshold must be positive", i))
			}
		}
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.RateLimit <= 0 {
		errs = append(errs, errors.New("api.rate_limit must be positive"))
	}

	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(messages, "; "))
}
