package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
)

type bookingApplicationService interface {
	Create(ctx context.Context, userID, role string, input services.CreateBookingInput) (*models.Booking, error)
	List(ctx context.Context, actorID, role, status string) ([]models.Booking, error)
	Get(ctx context.Context, actorID, role, bookingID string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actorID, role, bookingID, requestedStatus string) (*models.Booking, error)
	Pay(ctx context.Context, actorID, role, bookingID string) (*models.Booking, error)
}

type reviewWriter interface {
	Create(ctx context.Context, actorID, role, bookingID string, input services.CreateReviewInput) (*models.Review, error)
}

type BookingHandler struct {
	service bookingApplicationService
	reviews reviewWriter
}

func NewBookingHandler(service bookingApplicationService, reviews reviewWriter) *BookingHandler {
	return &BookingHandler{service: service, reviews: reviews}
}

type createBookingRequest struct {
	WorkerID    string  `json:"worker_id"`
	ScheduledAt string  `json:"scheduled_at"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

type createReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be a valid RFC3339 timestamp"})
	}
	if req.Hours <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hours must be greater than 0"})
	}

	booking, err := h.service.Create(c.UserContext(), userID, role, services.CreateBookingInput{
		WorkerID:    strings.TrimSpace(req.WorkerID),
		ScheduledAt: scheduledAt,
		Hours:       req.Hours,
		Description: req.Description,
		Address:     req.Address,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	bookings, err := h.service.List(c.UserContext(), userID, role, c.Query("status"))
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	booking, err := h.service.Get(c.UserContext(), userID, role, c.Params("id"))
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req updateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.UpdateStatus(c.UserContext(), userID, role, c.Params("id"), req.Status)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) Pay(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	booking, err := h.service.Pay(c.UserContext(), userID, role, c.Params("id"))
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) Review(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	review, err := h.reviews.Create(c.UserContext(), userID, role, c.Params("id"), services.CreateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking already reviewed"})
		}
		return mapBookingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAccountBlocked):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is blocked"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrWorkerUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Worker is not available"})
	case errors.Is(err, services.ErrWorkerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking request"})
	}
}
