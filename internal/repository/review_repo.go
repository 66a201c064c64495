package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type CreateReviewInput struct {
	BookingID string
	UserID    string
	WorkerID  string
	Rating    int
	Comment   *string
}

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	query := `
		INSERT INTO reviews (id, booking_id, user_id, worker_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, booking_id, user_id, worker_id, rating, comment, created_at
	`
	var review models.Review
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		input.BookingID,
		input.UserID,
		input.WorkerID,
		input.Rating,
		input.Comment,
	).Scan(
		&review.ID,
		&review.BookingID,
		&review.UserID,
		&review.WorkerID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByWorker(ctx context.Context, workerID string, limit, offset int) ([]models.Review, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM reviews WHERE worker_id = $1`, workerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, booking_id, user_id, worker_id, rating, comment, created_at
		FROM reviews
		WHERE worker_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, workerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.UserID,
			&review.WorkerID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
