// Package events carries booking state changes between the API and the
// notification hub, over Redis pub/sub when it is configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	BookingUpdatedChannel = "booking.updated"

	TypeBookingCreated = "BOOKING_CREATED"
	TypeBookingUpdated = "BOOKING_UPDATED"
	TypeBookingExpired = "BOOKING_EXPIRED"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"bookingId"`
	UserID        string    `json:"userId"`
	WorkerUserID  string    `json:"workerUserId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewBookingEvent(eventType string, booking models.Booking) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		WorkerUserID:  booking.WorkerUserID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		OccurredAt:    time.Now().UTC(),
	}
}

// Recipients lists the accounts an event concerns, without duplicates.
func (e BookingEvent) Recipients() []string {
	recipients := make([]string, 0, 2)
	if e.UserID != "" {
		recipients = append(recipients, e.UserID)
	}
	if e.WorkerUserID != "" && e.WorkerUserID != e.UserID {
		recipients = append(recipients, e.WorkerUserID)
	}
	return recipients
}

type Publisher interface {
	PublishBooking(ctx context.Context, event BookingEvent) error
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishBooking(ctx context.Context, event BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	if err := p.rdb.Publish(ctx, BookingUpdatedChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", BookingUpdatedChannel, err)
	}
	return nil
}

func Decode(payload []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if event.BookingID == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing bookingId")
	}
	return event, nil
}

// Subscribe forwards every booking event on the Redis channel to handle until
// ctx is cancelled. Malformed payloads are logged and skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, logger *slog.Logger, handle func(BookingEvent)) error {
	sub := rdb.Subscribe(ctx, BookingUpdatedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", BookingUpdatedChannel, err)
	}

	go func() {
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event, err := Decode([]byte(msg.Payload))
				if err != nil {
					logger.Warn("dropping booking event", "err", err)
					continue
				}
				handle(event)
			}
		}
	}()
	return nil
}
