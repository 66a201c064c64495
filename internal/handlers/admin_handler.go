package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
)

type adminApplicationService interface {
	SetWorkerBlocked(ctx context.Context, workerID string, blocked bool) (*models.Worker, error)
	SetUserBlocked(ctx context.Context, userID string, blocked bool) (*models.User, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// AdminHandler serves the moderation API. Routes must be guarded by
// middleware.RequireRole(models.RoleAdmin).
type AdminHandler struct {
	service    adminApplicationService
	complaints complaintApplicationService
}

func NewAdminHandler(service adminApplicationService, complaints complaintApplicationService) *AdminHandler {
	return &AdminHandler{service: service, complaints: complaints}
}

type resolveComplaintRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	complaints, total, err := h.complaints.List(c.UserContext(), c.Query("status"), page, limit)
	if err != nil {
		return mapComplaintError(c, err)
	}

	return c.JSON(fiber.Map{
		"complaints": complaints,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) ResolveComplaint(c *fiber.Ctx) error {
	var req resolveComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	complaint, err := h.complaints.Resolve(c.UserContext(), c.Params("id"), req.Status, req.Note)
	if err != nil {
		return mapComplaintError(c, err)
	}
	return c.JSON(fiber.Map{"complaint": complaint})
}

func (h *AdminHandler) BlockWorker(c *fiber.Ctx) error   { return h.setWorkerBlocked(c, true) }
func (h *AdminHandler) UnblockWorker(c *fiber.Ctx) error { return h.setWorkerBlocked(c, false) }
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error     { return h.setUserBlocked(c, true) }
func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error   { return h.setUserBlocked(c, false) }

func (h *AdminHandler) setWorkerBlocked(c *fiber.Ctx, blocked bool) error {
	worker, err := h.service.SetWorkerBlocked(c.UserContext(), c.Params("id"), blocked)
	if err != nil {
		return mapAdminError(c, err)
	}
	return c.JSON(fiber.Map{"worker": worker})
}

func (h *AdminHandler) setUserBlocked(c *fiber.Ctx, blocked bool) error {
	user, err := h.service.SetUserBlocked(c.UserContext(), c.Params("id"), blocked)
	if err != nil {
		return mapAdminError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return mapAdminError(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func mapAdminError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrWorkerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Worker not found"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process admin request"})
	}
}
