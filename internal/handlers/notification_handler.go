package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/middleware"
	notifyws "github.com/iyalarasuofficial/local-hire-platform-sub000/internal/websocket"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/pkg/utils"
)

type NotificationHandler struct {
	hub      *notifyws.Hub
	verifier middleware.TokenVerifier
}

func NewNotificationHandler(hub *notifyws.Hub, verifier middleware.TokenVerifier) *NotificationHandler {
	return &NotificationHandler{hub: hub, verifier: verifier}
}

// WebSocketAuth accepts the token as ?token= because browsers cannot set
// headers on websocket requests.
func (h *NotificationHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	identity, err := h.identify(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", identity.SubjectID)
	c.Locals("role", identity.Role)
	return c.Next()
}

func (h *NotificationHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	client := notifyws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *NotificationHandler) identify(c *fiber.Ctx) (*utils.Identity, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		if bearer, ok := middleware.BearerToken(c.Get("Authorization")); ok {
			tokenString = bearer
		}
	}
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	return h.verifier.Verify(tokenString)
}
