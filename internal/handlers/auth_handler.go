package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
	"github.com/jackc/pgx/v5"
)

type authApplicationService interface {
	Register(ctx context.Context, email, password, role string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	AdminLogin(email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, userID, role string) (*models.User, error)
}

type AuthHandler struct {
	service authApplicationService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	result, err := h.service.Register(c.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.AdminLogin(req.Email, req.Password)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return invalidToken(c)
	}

	user, err := h.service.Me(c.Context(), userID, role)
	if err != nil {
		return mapAuthError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func mapAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid email, a password of at least 8 characters and a role of user or worker are required",
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrAccountBlocked):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is blocked"})
	case errors.Is(err, services.ErrAdminNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Admin login is not configured"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process authentication request"})
	}
}
