package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/database"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/routes"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/scheduler"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/searchindex"
	notifyws "github.com/iyalarasuofficial/local-hire-platform-sub000/internal/websocket"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slogger)

	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to backing services
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
	}

	var es *elasticsearch.Client
	if cfg.ElasticsearchURL != "" {
		es, err = database.NewElasticsearchClient(ctx, cfg.ElasticsearchURL)
		if err != nil {
			log.Fatalf("Failed to connect to elasticsearch: %v", err)
		}
		if err := searchindex.NewWorkerIndex(es, cfg.WorkerIndex).EnsureIndex(ctx); err != nil {
			log.Fatalf("Failed to prepare worker index: %v", err)
		}
	}

	// 3. Notifications
	hub := notifyws.NewHub(slogger)
	go hub.Run(ctx)
	if rdb != nil {
		if err := events.Subscribe(ctx, rdb, slogger, hub.Dispatch); err != nil {
			log.Fatalf("Failed to subscribe to booking events: %v", err)
		}
	}

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	bookingService, err := routes.RegisterRoutes(app, routes.Dependencies{
		Config: cfg,
		DB:     database.DB,
		Redis:  rdb,
		Search: es,
		Hub:    hub,
		Logger: slogger,
	})
	if err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// 5. Booking expiry
	sweeper := scheduler.New(bookingService, cfg.BookingExpiryInterval, slogger)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start booking scheduler: %v", err)
	}

	// 6. Start Server
	go func() {
		slogger.Info("server starting", "port", cfg.Port, "directory", cfg.DirectoryBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slogger.Info("shutting down")

	sweeper.Stop()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slogger.Error("server shutdown failed", "err", err)
	}
}
