package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

type workerModerator interface {
	SetBlocked(ctx context.Context, workerID string, blocked bool) (*models.Worker, error)
	CountTotals(ctx context.Context) (total int, blocked int, err error)
}

type userModerator interface {
	SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

type bookingCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type complaintCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

// AdminService backs the moderation endpoints. Callers must already hold the
// admin role.
type AdminService struct {
	workers    workerModerator
	users      userModerator
	bookings   bookingCounter
	complaints complaintCounter
	indexer    WorkerIndexer
	logger     *slog.Logger
}

func NewAdminService(
	workers workerModerator,
	users userModerator,
	bookings bookingCounter,
	complaints complaintCounter,
	indexer WorkerIndexer,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		workers:    workers,
		users:      users,
		bookings:   bookings,
		complaints: complaints,
		indexer:    indexer,
		logger:     logger,
	}
}

// SetWorkerBlocked hides or restores a worker in discovery.
func (s *AdminService) SetWorkerBlocked(ctx context.Context, workerID string, blocked bool) (*models.Worker, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, ErrWorkerNotFound
	}
	worker, err := s.workers.SetBlocked(ctx, workerID, blocked)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}

	syncWorkerIndex(ctx, s.indexer, s.logger, worker)
	s.logger.Info("worker moderation", "workerId", worker.ID, "blocked", blocked)
	return worker, nil
}

// SetUserBlocked blocks or unblocks an account. A blocked account is refused
// at its next login.
func (s *AdminService) SetUserBlocked(ctx context.Context, userID string, blocked bool) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.users.SetBlocked(ctx, userID, blocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.logger.Info("account moderation", "userId", user.ID, "blocked", blocked)
	return user, nil
}

func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	totalWorkers, blockedWorkers, err := s.workers.CountTotals(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	openComplaints, err := s.complaints.CountOpen(ctx)
	if err != nil {
		return nil, err
	}

	return &models.PlatformStats{
		Users:            roles[models.RoleUser],
		Workers:          totalWorkers,
		BlockedWorkers:   blockedWorkers,
		BookingsByStatus: byStatus,
		OpenComplaints:   openComplaints,
	}, nil
}
