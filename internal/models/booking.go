package models

import "time"

const (
	BookingPending   = "pending"
	BookingAccepted  = "accepted"
	BookingRejected  = "rejected"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingExpired   = "expired"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	WorkerID      string    `json:"worker_id"`
	WorkerUserID  string    `json:"worker_user_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Hours         float64   `json:"hours"`
	Description   string    `json:"description"`
	Address       string    `json:"address"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	WorkerID  string    `json:"worker_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
