package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

var errMissingIdentity = errors.New("missing identity")

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// pageParams reads ?page= and ?limit=, clamping limit to maxPageLimit.
func pageParams(c *fiber.Ctx) (int, int) {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// actor returns the subject and role stored by middleware.AuthRequired.
func actor(c *fiber.Ctx) (string, string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", "", errMissingIdentity
	}
	role, ok := c.Locals("role").(string)
	if !ok || role == "" {
		return "", "", errMissingIdentity
	}
	return userID, role, nil
}

func invalidToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
}
