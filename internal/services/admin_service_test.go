package services

import (
	"context"
	"errors"
	"testing"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const testUserID = "3e2a6d90-1b1f-4b3c-9c3e-5f0a8e7d6c55"

type stubModerationStore struct {
	workerErr error
	userErr   error
}

func (s *stubModerationStore) SetBlocked(_ context.Context, id string, blocked bool) (*models.Worker, error) {
	if s.workerErr != nil {
		return nil, s.workerErr
	}
	return &models.Worker{ID: id, IsBlocked: blocked}, nil
}

func (s *stubModerationStore) CountTotals(_ context.Context) (int, int, error) {
	return 7, 2, nil
}

type stubUserModerator struct {
	err error
}

func (s *stubUserModerator) SetBlocked(_ context.Context, id string, blocked bool) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: id, IsBlocked: blocked}, nil
}

func (s *stubUserModerator) CountByRole(_ context.Context) (map[string]int, error) {
	return map[string]int{models.RoleUser: 12, models.RoleWorker: 7}, nil
}

type stubCounters struct{}

func (stubCounters) CountByStatus(_ context.Context) (map[string]int, error) {
	return map[string]int{models.BookingPending: 3, models.BookingCompleted: 5}, nil
}

func (stubCounters) CountOpen(_ context.Context) (int, error) {
	return 4, nil
}

func newTestAdminService(workers *stubModerationStore, users *stubUserModerator, indexer WorkerIndexer) *AdminService {
	return NewAdminService(workers, users, stubCounters{}, stubCounters{}, indexer, nil)
}

func TestSetWorkerBlockedSyncsIndex(t *testing.T) {
	indexer := &stubIndexer{}
	service := newTestAdminService(&stubModerationStore{}, &stubUserModerator{}, indexer)

	worker, err := service.SetWorkerBlocked(context.Background(), testWorkerID, true)
	if err != nil {
		t.Fatalf("SetWorkerBlocked: %v", err)
	}
	if !worker.IsBlocked {
		t.Fatalf("expected blocked worker")
	}
	if len(indexer.indexed) != 1 || !indexer.indexed[0].IsBlocked {
		t.Fatalf("expected the blocked worker to be reindexed, got %+v", indexer.indexed)
	}
}

func TestSetWorkerBlockedNotFound(t *testing.T) {
	service := newTestAdminService(&stubModerationStore{workerErr: pgx.ErrNoRows}, &stubUserModerator{}, nil)

	if _, err := service.SetWorkerBlocked(context.Background(), testWorkerID, true); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
	if _, err := service.SetWorkerBlocked(context.Background(), "w-1", true); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound for malformed id, got %v", err)
	}
}

func TestSetUserBlocked(t *testing.T) {
	service := newTestAdminService(&stubModerationStore{}, &stubUserModerator{}, nil)

	user, err := service.SetUserBlocked(context.Background(), testUserID, false)
	if err != nil {
		t.Fatalf("SetUserBlocked: %v", err)
	}
	if user.IsBlocked {
		t.Fatalf("expected unblocked user")
	}

	service = newTestAdminService(&stubModerationStore{}, &stubUserModerator{err: pgx.ErrNoRows}, nil)
	if _, err := service.SetUserBlocked(context.Background(), testUserID, true); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	service := newTestAdminService(&stubModerationStore{}, &stubUserModerator{}, nil)

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Users != 12 || stats.Workers != 7 || stats.BlockedWorkers != 2 || stats.OpenComplaints != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.BookingsByStatus[models.BookingCompleted] != 5 {
		t.Fatalf("unexpected booking counts %+v", stats.BookingsByStatus)
	}
}
