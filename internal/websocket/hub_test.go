package notifyws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case payload, ok := <-client.send:
		require.True(t, ok, "send queue closed")
		var message Message
		require.NoError(t, json.Unmarshal(payload, &message))
		return message
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubDeliversToBothParticipants(t *testing.T) {
	hub, _ := startHub(t)

	customer := NewClient(hub, nil, "user-1")
	worker := NewClient(hub, nil, "user-2")
	bystander := NewClient(hub, nil, "user-3")
	hub.Register(customer)
	hub.Register(worker)
	hub.Register(bystander)

	event := events.BookingEvent{
		Type:         events.TypeBookingUpdated,
		BookingID:    "b-1",
		UserID:       "user-1",
		WorkerUserID: "user-2",
		Status:       "accepted",
		OccurredAt:   time.Now(),
	}
	require.NoError(t, hub.PublishBooking(context.Background(), event))

	for _, client := range []*Client{customer, worker} {
		message := receive(t, client)
		assert.Equal(t, "booking_updated", message.Type)
		require.NotNil(t, message.Booking)
		assert.Equal(t, "b-1", message.Booking.BookingID)
	}

	select {
	case <-bystander.send:
		t.Fatal("bystander must not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesQueue(t *testing.T) {
	hub, _ := startHub(t)

	client := NewClient(hub, nil, "user-1")
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send queue was not closed")
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub, cancel := startHub(t)

	client := NewClient(hub, nil, "user-1")
	hub.Register(client)
	cancel()

	select {
	case <-hub.stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, ok := <-client.send
	assert.False(t, ok)
	assert.ErrorIs(t, hub.PublishBooking(context.Background(), events.BookingEvent{BookingID: "late"}), ErrHubStopped)
}

func queueClosed(client *Client) bool {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.closed
}

func TestReplyAfterSlowConsumerDropDoesNotPanic(t *testing.T) {
	hub, _ := startHub(t)

	client := NewClient(hub, nil, "user-1")
	hub.Register(client)

	for i := 0; i < 40; i++ {
		require.NoError(t, hub.PublishBooking(context.Background(), events.BookingEvent{
			Type:      events.TypeBookingUpdated,
			BookingID: "b-1",
			UserID:    "user-1",
		}))
	}
	require.Eventually(t, func() bool { return queueClosed(client) }, time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() { client.reply("pong", "") })
}

func TestReplyAfterHubStopDoesNotPanic(t *testing.T) {
	hub, cancel := startHub(t)

	client := NewClient(hub, nil, "user-1")
	hub.Register(client)
	cancel()
	<-hub.stopped

	assert.True(t, queueClosed(client))
	assert.NotPanics(t, func() { client.reply("pong", "") })

	late := NewClient(hub, nil, "user-2")
	hub.Register(late)
	assert.True(t, queueClosed(late))
	assert.NotPanics(t, func() { late.reply("error", "unsupported message type") })
}
