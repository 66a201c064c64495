package notifyws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
)

var ErrHubStopped = errors.New("notification hub stopped")

// Hub fans booking events out to the websocket connections of the accounts
// they concern. It satisfies events.Publisher for in-process delivery.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.BookingEvent
	stopped    chan struct{}
	logger     *slog.Logger
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte

	// mu guards closed; send is only written or closed while holding it.
	mu     sync.Mutex
	closed bool
}

type Message struct {
	Type      string               `json:"type"`
	Booking   *events.BookingEvent `json:"booking,omitempty"`
	Content   string               `json:"content,omitempty"`
	Timestamp string               `json:"timestamp"`
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.BookingEvent, 64),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

// Run serves registrations and deliveries until ctx is cancelled, then closes
// every client send queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					client.closeQueue()
				}
				delete(h.clients, userID)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				client.closeQueue()
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
		client.closeQueue()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

func (h *Hub) PublishBooking(ctx context.Context, event events.BookingEvent) error {
	select {
	case <-h.stopped:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- event:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch is the Redis subscription callback.
func (h *Hub) Dispatch(event events.BookingEvent) {
	if err := h.PublishBooking(context.Background(), event); err != nil {
		h.logger.Warn("notification hub dropped booking event", "bookingId", event.BookingID, "err", err)
	}
}

func (h *Hub) deliver(event events.BookingEvent) {
	encoded, err := json.Marshal(Message{
		Type:      strings.ToLower(event.Type),
		Booking:   &event,
		Timestamp: formatTimestamp(event.OccurredAt),
	})
	if err != nil {
		h.logger.Error("notification hub encode event", "err", err)
		return
	}

	for _, userID := range event.Recipients() {
		h.sendToUser(userID, encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		if !client.enqueue(payload) {
			delete(set, client)
			client.closeQueue()
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump keeps the connection alive and answers "ping" frames. Clients do
// not send anything else.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil || incoming.Type != "ping" {
			c.reply("error", "unsupported message type")
			continue
		}
		c.reply("pong", "")
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) reply(messageType, content string) {
	payload, err := json.Marshal(Message{
		Type:      messageType,
		Content:   content,
		Timestamp: formatTimestamp(time.Now()),
	})
	if err != nil {
		return
	}
	if !c.enqueue(payload) {
		c.hub.Unregister(c)
	}
}

// enqueue reports false when the queue is full or already closed.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) closeQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
