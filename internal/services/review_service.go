package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const maxReviewCommentLength = 1000

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
}

type reviewLister interface {
	ListByWorker(ctx context.Context, workerID string, limit, offset int) ([]models.Review, int, error)
}

type ReviewService struct {
	db       TxBeginner
	bookings bookingReader
	reviews  reviewLister
	indexer  WorkerIndexer
	logger   *slog.Logger
}

func NewReviewService(
	db TxBeginner,
	bookings bookingReader,
	reviews reviewLister,
	indexer WorkerIndexer,
	logger *slog.Logger,
) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		db:       db,
		bookings: bookings,
		reviews:  reviews,
		indexer:  indexer,
		logger:   logger,
	}
}

type CreateReviewInput struct {
	Rating  int
	Comment *string
}

// Create stores the customer's review of a completed booking and refreshes the
// worker's rating aggregate in the same transaction.
func (s *ReviewService) Create(ctx context.Context, actorID, role, bookingID string, input CreateReviewInput) (*models.Review, error) {
	if role != models.RoleUser {
		return nil, ErrForbidden
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidInput
	}
	comment := trimOptional(input.Comment)
	if comment != nil {
		if *comment == "" {
			comment = nil
		} else if len([]rune(*comment)) > maxReviewCommentLength {
			return nil, ErrInvalidInput
		}
	}

	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, ErrBookingNotFound
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapBookingLookupError(err)
	}
	if booking.UserID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingCompleted {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	review, err := repository.NewReviewRepository(tx).Create(ctx, repository.CreateReviewInput{
		BookingID: booking.ID,
		UserID:    actorID,
		WorkerID:  booking.WorkerID,
		Rating:    input.Rating,
		Comment:   comment,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	worker, err := repository.NewWorkerRepository(tx).RefreshRating(ctx, booking.WorkerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	syncWorkerIndex(ctx, s.indexer, s.logger, worker)
	return review, nil
}

func (s *ReviewService) ListByWorker(ctx context.Context, workerID string, page, limit int) ([]models.Review, int, error) {
	if _, err := uuid.Parse(strings.TrimSpace(workerID)); err != nil {
		return nil, 0, ErrWorkerNotFound
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.reviews.ListByWorker(ctx, workerID, limit, (page-1)*limit)
}

func mapBookingLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBookingNotFound
	}
	return err
}
