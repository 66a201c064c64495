package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `b.id, b.user_id, b.worker_id, w.user_id, b.scheduled_at, b.hours, b.description,
		b.address, b.amount, b.status, b.payment_status, b.created_at, b.updated_at`

type CreateBookingInput struct {
	UserID      string
	WorkerID    string
	ScheduledAt time.Time
	Hours       float64
	Description string
	Address     string
	Amount      float64
}

type BookingListFilter struct {
	ActorID string
	Role    string
	Status  string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := `
		WITH b AS (
			INSERT INTO bookings (id, user_id, worker_id, scheduled_at, hours, description, address, amount, status, payment_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', 'unpaid')
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN workers w ON w.id = b.worker_id
	`
	return scanBooking(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		input.UserID,
		input.WorkerID,
		input.ScheduledAt,
		input.Hours,
		input.Description,
		input.Address,
		input.Amount,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN workers w ON w.id = b.worker_id
		WHERE b.id = $1
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, error) {
	actorColumn := "b.user_id"
	if filter.Role == models.RoleWorker {
		actorColumn = "w.user_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("b.status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		JOIN workers w ON w.id = b.worker_id
		WHERE %s
		ORDER BY b.scheduled_at DESC, b.id ASC
	`, bookingColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatusIfCurrent moves a booking from currentStatus to nextStatus.
// pgx.ErrNoRows means the booking was changed concurrently.
func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID string,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := `
		WITH b AS (
			UPDATE bookings
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN workers w ON w.id = b.worker_id
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus))
}

func (r *BookingRepository) MarkPaid(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `
		WITH b AS (
			UPDATE bookings
			SET payment_status = 'paid', updated_at = NOW()
			WHERE id = $1 AND payment_status = 'unpaid'
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN workers w ON w.id = b.worker_id
	`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

// ExpireStale marks pending bookings scheduled before cutoff as expired and
// returns them.
func (r *BookingRepository) ExpireStale(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	query := `
		WITH b AS (
			UPDATE bookings
			SET status = 'expired', updated_at = NOW()
			WHERE status = 'pending' AND scheduled_at < $1
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN workers w ON w.id = b.worker_id
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expired := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *booking)
	}
	return expired, rows.Err()
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*)::int FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.WorkerID,
		&booking.WorkerUserID,
		&booking.ScheduledAt,
		&booking.Hours,
		&booking.Description,
		&booking.Address,
		&booking.Amount,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
