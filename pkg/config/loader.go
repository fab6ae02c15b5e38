package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/breachwatch")
	}

	v.SetEnvPrefix("BREACHWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "breachwatch")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "breachwatch")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")

	// Engine defaults
	v.SetDefault("engine.lookback", "60m")
	v.SetDefault("engine.min_samples", 10)
	v.SetDefault("engine.full_window_samples", 60)
	v.SetDefault("engine.volatility_cutoff", 0.2)
	v.SetDefault("engine.stability_margin", 0.01)
	v.SetDefault("engine.horizon_cap_minutes", 240.0)
	v.SetDefault("engine.peak_margin", 1.2)
	v.SetDefault("engine.volatile_trigger_ratio", 0.9)
	v.SetDefault("engine.volatile_peak_margin", 1.1)
	v.SetDefault("engine.volatile_time_to_breach_minutes", 30.0)
	v.SetDefault("engine.volatile_lookback_samples", 10)
	v.SetDefault("engine.urgent_window_minutes", 15.0)
	v.SetDefault("engine.prepare_window_minutes", 60.0)
	v.SetDefault("engine.record_timeout", "5s")
	v.SetDefault("engine.circuit_breaker.max_failures", 5)
	v.SetDefault("engine.circuit_breaker.timeout", "30s")

	// Record retention defaults
	v.SetDefault("records.max_age", "168h")
	v.SetDefault("records.max_per_metric", 1000)
	v.SetDefault("records.prune_interval", "1h")

	// Watcher defaults
	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.interval", "1m")
	v.SetDefault("watch.min_alert_confidence", 0.5)

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.jwt_issuer", "breachwatch")
	v.SetDefault("api.default_limit", 50)
	v.SetDefault("api.max_limit", 500)

	// WebSocket defaults
	v.SetDefault("websocket.broadcast_buffer", 256)
	v.SetDefault("websocket.client_buffer", 64)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
