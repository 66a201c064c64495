package routes

import (
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/discovery"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/handlers"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/middleware"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/searchindex"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
	notifyws "github.com/iyalarasuofficial/local-hire-platform-sub000/internal/websocket"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/pkg/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies are the process-wide clients routes are built from. Redis and
// Search are optional.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Search *elasticsearch.Client
	Hub    *notifyws.Hub
	Logger *slog.Logger
}

// RegisterRoutes wires repositories, services and handlers onto app. The
// booking service is returned so the caller can schedule expiry sweeps.
func RegisterRoutes(app *fiber.App, deps Dependencies) (*services.BookingService, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := repository.NewUserRepository(deps.DB)
	workerRepo := repository.NewWorkerRepository(deps.DB)
	bookingRepo := repository.NewBookingRepository(deps.DB)
	reviewRepo := repository.NewReviewRepository(deps.DB)
	complaintRepo := repository.NewComplaintRepository(deps.DB)

	// Interface values stay untyped nil when the backing client is absent.
	var indexer services.WorkerIndexer
	var directory discovery.Directory = workerRepo
	if deps.Search != nil {
		workerIndex := searchindex.NewWorkerIndex(deps.Search, cfg.WorkerIndex)
		indexer = workerIndex
		if cfg.DirectoryBackend == config.DirectoryElasticsearch {
			directory = workerIndex
		}
	} else if cfg.DirectoryBackend == config.DirectoryElasticsearch {
		return nil, fmt.Errorf("directory backend %q requires an elasticsearch client", cfg.DirectoryBackend)
	}

	var avatars services.AvatarStore
	if cfg.StorageConfigured() {
		store, err := services.NewSupabaseAvatarStore(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, err
		}
		avatars = store
	}

	var publisher events.Publisher = deps.Hub
	if deps.Redis != nil {
		publisher = events.NewRedisPublisher(deps.Redis)
	}

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPasswordHash)
	workerService := services.NewWorkerService(workerRepo, indexer, avatars, logger)
	discoveryService := discovery.NewService(directory)
	bookingService := services.NewBookingService(bookingRepo, workerRepo, userRepo, publisher, logger)
	reviewService := services.NewReviewService(deps.DB, bookingRepo, reviewRepo, indexer, logger)
	complaintService := services.NewComplaintService(complaintRepo, bookingRepo, userRepo)
	adminService := services.NewAdminService(workerRepo, userRepo, bookingRepo, complaintRepo, indexer, logger)

	verifier := utils.NewJWTVerifier(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(authService)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService, workerService, cfg)
	workerHandler := handlers.NewWorkerHandler(workerService, reviewService)
	bookingHandler := handlers.NewBookingHandler(bookingService, reviewService)
	complaintHandler := handlers.NewComplaintHandler(complaintService)
	adminHandler := handlers.NewAdminHandler(adminService, complaintService)
	notificationHandler := handlers.NewNotificationHandler(deps.Hub, verifier)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if err := registerDocsRoutes(app, cfg); err != nil {
		return nil, err
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/admin/login", authHandler.AdminLogin)
	auth.Get("/me", middleware.AuthRequired(verifier), authHandler.Me)

	// The websocket route authenticates from the query string, so it is
	// registered ahead of the bearer-only group.
	api.Use("/v1/ws", notificationHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(notificationHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(verifier))

	workers := authProtected.Group("/workers")
	workers.Get("/search", discoveryHandler.SearchWorkers)
	workers.Get("/categories", discoveryHandler.ListCategories)
	workers.Post("/onboarding", middleware.RequireRole(models.RoleWorker), workerHandler.Onboard)
	workers.Get("/profile", middleware.RequireRole(models.RoleWorker), workerHandler.GetProfile)
	workers.Put("/profile", middleware.RequireRole(models.RoleWorker), workerHandler.UpdateProfile)
	workers.Post("/profile/avatar", middleware.RequireRole(models.RoleWorker), workerHandler.UploadAvatar)
	workers.Put("/availability", middleware.RequireRole(models.RoleWorker), workerHandler.SetAvailability)
	workers.Get("/:id/reviews", workerHandler.ListReviews)
	workers.Get("/:id", workerHandler.GetWorker)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", middleware.RequireRole(models.RoleUser), bookingHandler.Create)
	bookings.Get("", bookingHandler.List)
	bookings.Get("/:id", bookingHandler.Get)
	bookings.Put("/:id/status", bookingHandler.UpdateStatus)
	bookings.Put("/:id/payment", middleware.RequireRole(models.RoleUser), bookingHandler.Pay)
	bookings.Post("/:id/review", middleware.RequireRole(models.RoleUser), bookingHandler.Review)

	complaints := authProtected.Group("/complaints")
	complaints.Post("", middleware.RequireRole(models.RoleUser, models.RoleWorker), complaintHandler.File)

	admin := authProtected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/complaints", adminHandler.ListComplaints)
	admin.Put("/complaints/:id", adminHandler.ResolveComplaint)
	admin.Put("/workers/:id/block", adminHandler.BlockWorker)
	admin.Put("/workers/:id/unblock", adminHandler.UnblockWorker)
	admin.Put("/users/:id/block", adminHandler.BlockUser)
	admin.Put("/users/:id/unblock", adminHandler.UnblockUser)
	admin.Get("/stats", adminHandler.Stats)

	return bookingService, nil
}
