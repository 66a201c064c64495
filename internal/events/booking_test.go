package events

import (
	"encoding/json"
	"testing"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEventCopiesParticipants(t *testing.T) {
	event := NewBookingEvent(TypeBookingUpdated, models.Booking{
		ID:            "b-1",
		UserID:        "u-1",
		WorkerUserID:  "u-2",
		Status:        models.BookingAccepted,
		PaymentStatus: models.PaymentUnpaid,
	})

	assert.Equal(t, "b-1", event.BookingID)
	assert.Equal(t, []string{"u-1", "u-2"}, event.Recipients())
	assert.False(t, event.OccurredAt.IsZero())
}

func TestRecipientsDeduplicates(t *testing.T) {
	event := BookingEvent{UserID: "same", WorkerUserID: "same"}
	assert.Equal(t, []string{"same"}, event.Recipients())
}

func TestDecodeRoundTrip(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: TypeBookingExpired, BookingID: "b-9", Status: models.BookingExpired})
	require.NoError(t, err)

	event, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeBookingExpired, event.Type)
	assert.Equal(t, models.BookingExpired, event.Status)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"BOOKING_UPDATED"}`))
	assert.Error(t, err)
}
