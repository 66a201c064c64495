package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	notifyws "github.com/iyalarasuofficial/local-hire-platform-sub000/internal/websocket"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/pkg/utils"
)

const testSecret = "routes-test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	cfg := &config.Config{
		JWTSecret:        testSecret,
		DirectoryBackend: config.DirectoryPostgres,
		AppEnv:           "test",
	}
	bookings, err := RegisterRoutes(app, Dependencies{Config: cfg, Hub: notifyws.NewHub(nil)})
	if err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	if bookings == nil {
		t.Fatal("expected booking service to be returned")
	}
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, role string) int {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if role != "" {
		token, err := utils.GenerateToken("8f14e45f-ceea-467f-a0e6-2f0b1c2d3e4f", role, testSecret)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRouteGuards(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		name   string
		method string
		target string
		role   string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"search requires a token", http.MethodGet, "/api/v1/workers/search", "", http.StatusUnauthorized},
		{"search validates coordinates", http.MethodGet, "/api/v1/workers/search?lat=abc&lng=1", models.RoleUser, http.StatusBadRequest},
		{"admin routes reject users", http.MethodGet, "/api/v1/admin/stats", models.RoleUser, http.StatusForbidden},
		{"workers cannot create bookings", http.MethodPost, "/api/v1/bookings", models.RoleWorker, http.StatusForbidden},
		{"users cannot onboard as workers", http.MethodPost, "/api/v1/workers/onboarding", models.RoleUser, http.StatusForbidden},
		{"websocket requires an upgrade", http.MethodGet, "/api/v1/ws", "", http.StatusUpgradeRequired},
		{"docs are off outside development", http.MethodGet, "/docs", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := doRequest(t, app, tc.method, tc.target, tc.role); got != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, got)
			}
		})
	}
}

func TestRegisterRoutesRequiresSearchClientForElasticsearchDirectory(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, DirectoryBackend: config.DirectoryElasticsearch}

	if _, err := RegisterRoutes(fiber.New(), Dependencies{Config: cfg, Hub: notifyws.NewHub(nil)}); err == nil {
		t.Fatal("expected error when elasticsearch directory has no client")
	}
}
