package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/discovery"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
)

type workerSearcher interface {
	Search(ctx context.Context, req discovery.SearchRequest) (*discovery.Result, error)
}

type categoryLister interface {
	Categories(ctx context.Context) ([]models.SkillCount, error)
}

type DiscoveryHandler struct {
	searcher   workerSearcher
	categories categoryLister
	cfg        *config.Config
}

func NewDiscoveryHandler(searcher workerSearcher, categories categoryLister, cfg *config.Config) *DiscoveryHandler {
	return &DiscoveryHandler{searcher: searcher, categories: categories, cfg: cfg}
}

type searchParams struct {
	Search         string   `json:"search"`
	Categories     []string `json:"categories"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	LocationString string   `json:"locationString"`
	Radius         float64  `json:"radius"`
	LocationAware  bool     `json:"locationAware"`
}

func (h *DiscoveryHandler) SearchWorkers(c *fiber.Ctx) error {
	req, err := discovery.ParseSearchRequest(discovery.RawQuery{
		Search:         c.Query("search"),
		Categories:     c.Query("categories"),
		Lat:            c.Query("lat"),
		Lng:            c.Query("lng"),
		LocationString: c.Query("locationString"),
		Radius:         c.Query("radius"),
	})
	if err != nil {
		return h.searchFailure(c, err)
	}

	result, err := h.searcher.Search(c.UserContext(), req)
	if err != nil {
		return h.searchFailure(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"count":        len(result.Workers),
		"workers":      result.Workers,
		"searchParams": echoSearchParams(result.Request),
	})
}

func (h *DiscoveryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.Categories(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// searchFailure maps discovery errors to the search envelope. Diagnostic
// details are only exposed outside production.
func (h *DiscoveryHandler) searchFailure(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Failed to search workers"

	var validationErr *discovery.ValidationError
	if errors.As(err, &validationErr) {
		status = fiber.StatusBadRequest
		message = validationErr.Message
	}

	body := fiber.Map{"success": false, "error": message}
	if !h.cfg.IsProduction() {
		body["details"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func echoSearchParams(req discovery.SearchRequest) searchParams {
	params := searchParams{
		Search:         req.FreeText,
		Categories:     req.Categories,
		LocationString: req.LocationText,
		Radius:         req.RadiusKm,
		LocationAware:  req.LocationAware(),
	}
	if params.Categories == nil {
		params.Categories = []string{}
	}
	if req.Origin != nil {
		lat, lng := req.Origin.Latitude, req.Origin.Longitude
		params.Lat = &lat
		params.Lng = &lng
	}
	return params
}
