package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults plus env vars.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "ev-station-core")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", 10*time.Second)
	viper.SetDefault("http.write_timeout", 10*time.Second)

	viper.SetDefault("scheduler.acceleration", 30.0)
	viper.SetDefault("scheduler.tick_interval", 100*time.Millisecond)
	viper.SetDefault("scheduler.waiting_area_capacity", 6)
	viper.SetDefault("scheduler.pile_queue_capacity", 2)
	viper.SetDefault("scheduler.fast_power_kwh_per_h", 30.0)
	viper.SetDefault("scheduler.slow_power_kwh_per_h", 7.0)
	viper.SetDefault("scheduler.fast_piles", 2)
	viper.SetDefault("scheduler.slow_piles", 3)
	viper.SetDefault("scheduler.snapshot_cache_ttl", 2*time.Second)

	viper.SetDefault("tariff.peak_rate", 1.0)
	viper.SetDefault("tariff.flat_rate", 0.7)
	viper.SetDefault("tariff.valley_rate", 0.4)
	viper.SetDefault("tariff.service_rate_per_kwh", 0.8)

	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaeger_endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("logging.level", "info")
}
