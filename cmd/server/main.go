package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/adapter/cache"
	"github.com/seu-repo/ev-station-core/internal/adapter/queue"
	"github.com/seu-repo/ev-station-core/internal/adapter/storage/postgres"
	"github.com/seu-repo/ev-station-core/internal/billing"
	"github.com/seu-repo/ev-station-core/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/ev-station-core/internal/observability/telemetry"
	"github.com/seu-repo/ev-station-core/internal/ports"
	"github.com/seu-repo/ev-station-core/internal/scheduler"
	"github.com/seu-repo/ev-station-core/pkg/config"
)

const serviceName = "ev-station-core"

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting charging station core",
		zap.String("service", serviceName),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize Tracing
	if cfg.Tracing.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 5. Initialize Cache (Redis with local fallback)
	var snapshotCache ports.Cache
	if cfg.Redis.Enabled {
		snapshotCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
			snapshotCache = cache.NewLocalCache(time.Minute, logger)
		}
	} else {
		snapshotCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer snapshotCache.Close()

	// 6. Initialize Message Queue (NATS)
	var messageQueue queue.MessageQueue
	if cfg.NATS.Enabled {
		messageQueue, err = queue.NewNATSQueue(cfg.NATS.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer messageQueue.Close()
	}

	// 7. Initialize Repositories (circuit-broken so a dead store cannot
	// stall the tick engine's flush)
	recordRepo := circuitbreaker.WrapRecordRepository(postgres.NewRecordRepository(db, logger), logger)
	pileRepo := circuitbreaker.WrapPileRepository(postgres.NewPileRepository(db, logger), logger)

	// 8. Initialize Scheduler
	sched := scheduler.New(scheduler.Config{
		Acceleration:        cfg.Scheduler.Acceleration,
		TickInterval:        cfg.Scheduler.TickInterval,
		WaitingAreaCapacity: cfg.Scheduler.WaitingAreaCapacity,
		PileQueueCapacity:   cfg.Scheduler.PileQueueCapacity,
		FastPowerKWh:        cfg.Scheduler.FastPowerKWh,
		SlowPowerKWh:        cfg.Scheduler.SlowPowerKWh,
		FastPiles:           cfg.Scheduler.FastPiles,
		SlowPiles:           cfg.Scheduler.SlowPiles,
		Tariff: billing.Tariff{
			PeakRate:    cfg.Tariff.PeakRate,
			FlatRate:    cfg.Tariff.FlatRate,
			ValleyRate:  cfg.Tariff.ValleyRate,
			ServiceRate: cfg.Tariff.ServiceRate,
		},
	}, nil, recordRepo, pileRepo, messageQueue, logger)

	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// 9. Publish the station snapshot to the cache for the HTTP layer
	snapshotDone := make(chan struct{})
	go publishSnapshots(sched, snapshotCache, cfg.Scheduler.SnapshotCacheTTL, snapshotDone, logger)

	// 10. Operational HTTP endpoints
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(sched.Snapshot())
	})
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	close(snapshotDone)
	if err := sched.Stop(); err != nil {
		logger.Error("Scheduler stop failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// publishSnapshots periodically serializes the station snapshot into the
// cache so read traffic never touches the scheduler lock path.
func publishSnapshots(sched *scheduler.Scheduler, c ports.Cache, ttl time.Duration, done <-chan struct{}, logger *zap.Logger) {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := sched.Snapshot()
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := c.Set(ctx, "station:snapshot", string(data), ttl); err != nil {
				logger.Warn("Failed to cache snapshot", zap.Error(err))
			}
			cancel()
		}
	}
}
