package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
)

type complaintApplicationService interface {
	File(ctx context.Context, actorID, role string, input services.FileComplaintInput) (*models.Complaint, error)
	List(ctx context.Context, status string, page, limit int) ([]models.Complaint, int, error)
	Resolve(ctx context.Context, complaintID, status string, note *string) (*models.Complaint, error)
}

type ComplaintHandler struct {
	service complaintApplicationService
}

func NewComplaintHandler(service complaintApplicationService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

type fileComplaintRequest struct {
	BookingID   string `json:"booking_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func (h *ComplaintHandler) File(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req fileComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	complaint, err := h.service.File(c.UserContext(), userID, role, services.FileComplaintInput{
		BookingID:   req.BookingID,
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return mapComplaintError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"complaint": complaint})
}

func mapComplaintError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subject and description are required"})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAccountBlocked):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is blocked"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, services.ErrComplaintNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Open complaint not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process complaint request"})
	}
}
