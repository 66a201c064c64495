package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const maxBookingHours = 24

// bookingTransitions lists, per role, the statuses reachable from each status.
var bookingTransitions = map[string]map[string][]string{
	models.RoleWorker: {
		models.BookingPending:  {models.BookingAccepted, models.BookingRejected},
		models.BookingAccepted: {models.BookingCompleted},
	},
	models.RoleUser: {
		models.BookingPending:  {models.BookingCancelled},
		models.BookingAccepted: {models.BookingCancelled},
	},
}

type bookingStore interface {
	Create(ctx context.Context, input repository.CreateBookingInput) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, filter repository.BookingListFilter) ([]models.Booking, error)
	UpdateStatusIfCurrent(ctx context.Context, bookingID, currentStatus, nextStatus string) (*models.Booking, error)
	MarkPaid(ctx context.Context, bookingID string) (*models.Booking, error)
	ExpireStale(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

type workerReader interface {
	GetByID(ctx context.Context, id string) (*models.Worker, error)
}

type BookingService struct {
	bookings  bookingStore
	workers   workerReader
	accounts  accountReader
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewBookingService(
	bookings bookingStore,
	workers workerReader,
	accounts accountReader,
	publisher events.Publisher,
	logger *slog.Logger,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		bookings:  bookings,
		workers:   workers,
		accounts:  accounts,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateBookingInput struct {
	WorkerID    string
	ScheduledAt time.Time
	Hours       float64
	Description string
	Address     string
}

func (s *BookingService) Create(ctx context.Context, userID, role string, input CreateBookingInput) (*models.Booking, error) {
	if role != models.RoleUser {
		return nil, ErrForbidden
	}

	description := strings.TrimSpace(input.Description)
	if description == "" || input.Hours <= 0 || input.Hours > maxBookingHours || math.IsNaN(input.Hours) {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.IsZero() || input.ScheduledAt.Before(s.now().Add(-1*time.Minute)) {
		return nil, ErrInvalidInput
	}
	if _, err := uuid.Parse(input.WorkerID); err != nil {
		return nil, ErrWorkerNotFound
	}
	if err := ensureActive(ctx, s.accounts, userID); err != nil {
		return nil, err
	}

	worker, err := s.workers.GetByID(ctx, input.WorkerID)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}
	if worker.IsBlocked {
		return nil, ErrWorkerNotFound
	}
	if !worker.IsAvailable {
		return nil, ErrWorkerUnavailable
	}
	if worker.UserID == userID {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookings.Create(ctx, repository.CreateBookingInput{
		UserID:      userID,
		WorkerID:    worker.ID,
		ScheduledAt: input.ScheduledAt.UTC(),
		Hours:       input.Hours,
		Description: description,
		Address:     normalizeAddress(input.Address),
		Amount:      math.Round(worker.Charge*input.Hours*100) / 100,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, actorID, role, status string) ([]models.Booking, error) {
	if role != models.RoleUser && role != models.RoleWorker {
		return nil, ErrForbidden
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !isBookingStatus(status) {
		return nil, ErrInvalidStatus
	}

	return s.bookings.List(ctx, repository.BookingListFilter{
		ActorID: actorID,
		Role:    role,
		Status:  status,
	})
}

func (s *BookingService) Get(ctx context.Context, actorID, role, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, actorID, role, bookingID, requestedStatus string) (*models.Booking, error) {
	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	booking, err := s.Get(ctx, actorID, role, bookingID)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(role, booking.Status, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatusIfCurrent(ctx, booking.ID, booking.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.publish(ctx, events.TypeBookingUpdated, updated)
	return updated, nil
}

// Pay flags an accepted or completed booking as paid. Paying twice is a no-op.
func (s *BookingService) Pay(ctx context.Context, actorID, role, bookingID string) (*models.Booking, error) {
	if role != models.RoleUser {
		return nil, ErrForbidden
	}

	booking, err := s.Get(ctx, actorID, role, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return booking, nil
	}
	if booking.Status != models.BookingAccepted && booking.Status != models.BookingCompleted {
		return nil, ErrInvalidStateTransition
	}

	updated, err := s.bookings.MarkPaid(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.load(ctx, booking.ID)
		}
		return nil, err
	}

	s.publish(ctx, events.TypeBookingUpdated, updated)
	return updated, nil
}

// ExpireStale expires pending bookings whose scheduled time has passed and
// returns how many were expired.
func (s *BookingService) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.bookings.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.publish(ctx, events.TypeBookingExpired, &expired[i])
	}
	return len(expired), nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, ErrBookingNotFound
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapBookingLookupError(err)
	}
	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *models.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBooking(ctx, events.NewBookingEvent(eventType, *booking)); err != nil {
		s.logger.Warn("publish booking event failed", "bookingId", booking.ID, "type", eventType, "err", err)
	}
}

func canAccessBooking(role, actorID string, booking *models.Booking) bool {
	switch role {
	case models.RoleUser:
		return booking.UserID == actorID
	case models.RoleWorker:
		return booking.WorkerUserID == actorID
	case models.RoleAdmin:
		return true
	default:
		return false
	}
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accept", "accepted":
		return models.BookingAccepted, nil
	case "reject", "rejected":
		return models.BookingRejected, nil
	case "complete", "completed":
		return models.BookingCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.BookingCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

func validateStatusTransition(role, current, next string) error {
	byStatus, ok := bookingTransitions[role]
	if !ok {
		return ErrForbidden
	}
	for _, allowed := range byStatus[current] {
		if allowed == next {
			return nil
		}
	}
	if !roleMayRequest(byStatus, next) {
		return ErrForbidden
	}
	return ErrInvalidStateTransition
}

func roleMayRequest(byStatus map[string][]string, status string) bool {
	for _, targets := range byStatus {
		for _, target := range targets {
			if target == status {
				return true
			}
		}
	}
	return false
}

func isBookingStatus(status string) bool {
	switch status {
	case models.BookingPending, models.BookingAccepted, models.BookingRejected,
		models.BookingCompleted, models.BookingCancelled, models.BookingExpired:
		return true
	}
	return false
}
