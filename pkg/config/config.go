package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Tariff     TariffConfig     `mapstructure:"tariff"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SchedulerConfig mirrors the recognized scheduling options.
type SchedulerConfig struct {
	Acceleration        float64       `mapstructure:"acceleration"`
	TickInterval        time.Duration `mapstructure:"tick_interval"`
	WaitingAreaCapacity int           `mapstructure:"waiting_area_capacity"`
	PileQueueCapacity   int           `mapstructure:"pile_queue_capacity"`
	FastPowerKWh        float64       `mapstructure:"fast_power_kwh_per_h"`
	SlowPowerKWh        float64       `mapstructure:"slow_power_kwh_per_h"`
	FastPiles           int           `mapstructure:"fast_piles"`
	SlowPiles           int           `mapstructure:"slow_piles"`
	SnapshotCacheTTL    time.Duration `mapstructure:"snapshot_cache_ttl"`
}

type TariffConfig struct {
	PeakRate    float64 `mapstructure:"peak_rate"`
	FlatRate    float64 `mapstructure:"flat_rate"`
	ValleyRate  float64 `mapstructure:"valley_rate"`
	ServiceRate float64 `mapstructure:"service_rate_per_kwh"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
