package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
)

const maxAvatarSizeBytes = 5 * 1024 * 1024

type workerApplicationService interface {
	Onboard(ctx context.Context, userID, role string, input services.OnboardWorkerInput) (*models.Worker, error)
	GetProfile(ctx context.Context, userID string) (*models.Worker, error)
	UpdateProfile(ctx context.Context, userID string, input services.UpdateWorkerProfileInput) (*models.Worker, error)
	SetAvailability(ctx context.Context, userID string, available bool) (*models.Worker, error)
	UploadAvatar(ctx context.Context, userID string, content io.Reader, filename string) (*models.Worker, error)
	GetPublic(ctx context.Context, workerID string) (*models.Worker, error)
}

type reviewReader interface {
	ListByWorker(ctx context.Context, workerID string, page, limit int) ([]models.Review, int, error)
}

type WorkerHandler struct {
	service workerApplicationService
	reviews reviewReader
}

func NewWorkerHandler(service workerApplicationService, reviews reviewReader) *WorkerHandler {
	return &WorkerHandler{service: service, reviews: reviews}
}

type onboardWorkerRequest struct {
	Name          string   `json:"name"`
	Skills        []string `json:"skills"`
	Bio           string   `json:"bio"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"lat"`
	Longitude     *float64 `json:"lng"`
	Charge        float64  `json:"charge"`
	MaxDistanceKm *float64 `json:"max_distance_km"`
	Phone         *string  `json:"phone"`
}

type updateWorkerRequest struct {
	Name          *string   `json:"name"`
	Skills        *[]string `json:"skills"`
	Bio           *string   `json:"bio"`
	Address       *string   `json:"address"`
	Latitude      *float64  `json:"lat"`
	Longitude     *float64  `json:"lng"`
	Charge        *float64  `json:"charge"`
	MaxDistanceKm *float64  `json:"max_distance_km"`
	Phone         *string   `json:"phone"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

func (h *WorkerHandler) Onboard(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req onboardWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	worker, err := h.service.Onboard(c.UserContext(), userID, role, services.OnboardWorkerInput{
		Name:          req.Name,
		Skills:        req.Skills,
		Bio:           req.Bio,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Charge:        req.Charge,
		MaxDistanceKm: req.MaxDistanceKm,
		Phone:         req.Phone,
	})
	if err != nil {
		return mapWorkerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"worker": worker})
}

func (h *WorkerHandler) GetProfile(c *fiber.Ctx) error {
	userID, _, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	worker, err := h.service.GetProfile(c.UserContext(), userID)
	if err != nil {
		return mapWorkerError(c, err)
	}
	return c.JSON(fiber.Map{"worker": worker})
}

func (h *WorkerHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req updateWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	worker, err := h.service.UpdateProfile(c.UserContext(), userID, services.UpdateWorkerProfileInput{
		Name:          req.Name,
		Skills:        req.Skills,
		Bio:           req.Bio,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Charge:        req.Charge,
		MaxDistanceKm: req.MaxDistanceKm,
		Phone:         req.Phone,
	})
	if err != nil {
		return mapWorkerError(c, err)
	}
	return c.JSON(fiber.Map{"worker": worker})
}

func (h *WorkerHandler) SetAvailability(c *fiber.Ctx) error {
	userID, _, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req availabilityRequest
	if err := c.BodyParser(&req); err != nil || req.IsAvailable == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_available is required"})
	}

	worker, err := h.service.SetAvailability(c.UserContext(), userID, *req.IsAvailable)
	if err != nil {
		return mapWorkerError(c, err)
	}
	return c.JSON(fiber.Map{"worker": worker})
}

func (h *WorkerHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, _, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxAvatarSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	worker, err := h.service.UploadAvatar(c.UserContext(), userID, file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
		}
		return mapWorkerError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": worker.AvatarURL,
		"worker":     worker,
	})
}

func (h *WorkerHandler) GetWorker(c *fiber.Ctx) error {
	worker, err := h.service.GetPublic(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapWorkerError(c, err)
	}
	return c.JSON(fiber.Map{"worker": worker})
}

func (h *WorkerHandler) ListReviews(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	reviews, total, err := h.reviews.ListByWorker(c.UserContext(), c.Params("id"), page, limit)
	if err != nil {
		return mapWorkerError(c, err)
	}

	return c.JSON(fiber.Map{
		"reviews":    reviews,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func mapWorkerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker profile"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Worker profile already exists"})
	case errors.Is(err, services.ErrWorkerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	case errors.Is(err, services.ErrStorageNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process worker request"})
	}
}
