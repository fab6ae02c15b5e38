package config

import (
	"time"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Records   RecordsConfig   `mapstructure:"records"`
	Watch     WatchConfig     `mapstructure:"watch"`
	API       APIConfig       `mapstructure:"api"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Events    EventsConfig    `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

// EngineConfig carries every tunable of the prediction pipeline. The
// multipliers and cutoffs default to the values the rules were designed
// around; overriding them is supported but rarely needed.
type EngineConfig struct {
	Lookback          time.Duration `mapstructure:"lookback"`
	MinSamples        int           `mapstructure:"min_samples"`
	FullWindowSamples int           `mapstructure:"full_window_samples"`

	VolatilityCutoff float64 `mapstructure:"volatility_cutoff"`
	StabilityMargin  float64 `mapstructure:"stability_margin"`

	HorizonCapMinutes      float64 `mapstructure:"horizon_cap_minutes"`
	PeakMargin             float64 `mapstructure:"peak_margin"`
	VolatileTriggerRatio   float64 `mapstructure:"volatile_trigger_ratio"`
	VolatilePeakMargin     float64 `mapstructure:"volatile_peak_margin"`
	VolatileTimeToBreach   float64 `mapstructure:"volatile_time_to_breach_minutes"`
	VolatileLookbackCount  int     `mapstructure:"volatile_lookback_samples"`
	UrgentWindowMinutes    float64 `mapstructure:"urgent_window_minutes"`
	PrepareWindowMinutes   float64 `mapstructure:"prepare_window_minutes"`

	RecordTimeout time.Duration `mapstructure:"record_timeout"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RecordsConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	MaxPerMetric  int           `mapstructure:"max_per_metric"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// WatchConfig drives the background watcher that re-predicts each
// configured metric on an interval and escalates confident breaches.
type WatchConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Interval           time.Duration `mapstructure:"interval"`
	MinAlertConfidence float64       `mapstructure:"min_alert_confidence"`
	Metrics            []WatchMetric `mapstructure:"metrics"`
}

type WatchMetric struct {
	Name      string        `mapstructure:"name"`
	Threshold float64       `mapstructure:"threshold"`
	Lookback  time.Duration `mapstructure:"lookback"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTDuration  time.Duration `mapstructure:"jwt_duration"`
	JWTIssuer    string        `mapstructure:"jwt_issuer"`
	APIKeyHash   string        `mapstructure:"api_key_hash"`
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
}

type WebSocketConfig struct {
	BroadcastBuffer int `mapstructure:"broadcast_buffer"`
	ClientBuffer    int `mapstructure:"client_buffer"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}
