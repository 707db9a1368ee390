package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-offer-match/internal/app"
	"go-offer-match/internal/cache"
	"go-offer-match/internal/config"
	"go-offer-match/internal/events"
	"go-offer-match/internal/handler"
	applog "go-offer-match/internal/logger"
	"go-offer-match/internal/metrics"
	"go-offer-match/internal/ws"
)

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := applog.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Store
	store, closeStore, err := app.OpenStore(cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer closeStore() //nolint:errcheck

	// 3. Setup WebSocket Hub and event sinks
	wsHub := ws.NewHub(log.Named("ws"))
	go wsHub.Run(ctx)

	publisher := events.Multi{wsHub}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			BatchTimeout: cfg.KafkaBatchTimeout,
			WriteTimeout: 10 * time.Second,
		})
		if err != nil {
			log.Fatal("kafka publisher", zap.Error(err))
		}
		defer kp.Close() //nolint:errcheck
		publisher = append(publisher, kp)
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// 4. Summary cache (optional)
	var summaryCache *cache.SummaryCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close() //nolint:errcheck

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, summary cache degraded", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		summaryCache = cache.NewSummaryCache(rdb, cfg.SummaryCacheTTL)
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// 6. Dependency Injection (Wiring Layers)
	opts := app.Options{Publisher: publisher, Metrics: m}
	if summaryCache != nil {
		opts.Cache = summaryCache
	}
	services := app.NewServices(cfg, store, opts, log)

	// 7. Seed default privileges and admin user
	if err := services.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Warn("failed to seed admin user", zap.Error(err))
	}

	// 8. Setup Fiber
	server := fiber.New(fiber.Config{
		AppName:   "Offer Match v1.0",
		BodyLimit: 16 * 1024 * 1024,
	})

	// Middleware
	server.Use(logger.New())  // Logging request
	server.Use(recover.New()) // Panic recovery
	server.Use(cors.New())    // CORS

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 9. Routes
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{"error": "Too many login attempts, try again later"})
		},
	})
	handler.Register(server.Group("/api/v1"), services, log.Named("http"), loginLimiter)

	// WebSocket Route
	server.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	server.Get("/ws", websocket.New(func(c *websocket.Conn) {
		// the hub stops first on shutdown
		select {
		case wsHub.Register <- c:
		case <-ctx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-ctx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
