package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const defaultMaxDistanceKm = 10

type workerStore interface {
	Create(ctx context.Context, input repository.CreateWorkerInput) (*models.Worker, error)
	GetByID(ctx context.Context, id string) (*models.Worker, error)
	GetByUserID(ctx context.Context, userID string) (*models.Worker, error)
	UpdatePartial(ctx context.Context, userID string, input repository.UpdateWorkerInput) (*models.Worker, error)
	SetAvailability(ctx context.Context, userID string, available bool) (*models.Worker, error)
	ListCategories(ctx context.Context) ([]models.SkillCount, error)
}

// WorkerIndexer mirrors worker writes into the search index.
type WorkerIndexer interface {
	IndexWorker(ctx context.Context, worker models.Worker) error
}

type WorkerService struct {
	workers workerStore
	indexer WorkerIndexer
	avatars AvatarStore
	logger  *slog.Logger
}

func NewWorkerService(workers workerStore, indexer WorkerIndexer, avatars AvatarStore, logger *slog.Logger) *WorkerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerService{
		workers: workers,
		indexer: indexer,
		avatars: avatars,
		logger:  logger,
	}
}

type OnboardWorkerInput struct {
	Name          string
	Skills        []string
	Bio           string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Charge        float64
	MaxDistanceKm *float64
	Phone         *string
}

type UpdateWorkerProfileInput struct {
	Name          *string
	Skills        *[]string
	Bio           *string
	Address       *string
	Latitude      *float64
	Longitude     *float64
	Charge        *float64
	MaxDistanceKm *float64
	Phone         *string
}

func (s *WorkerService) Onboard(ctx context.Context, userID, role string, input OnboardWorkerInput) (*models.Worker, error) {
	if role != models.RoleWorker {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	skills := NormalizeSkills(input.Skills)
	if name == "" || len(skills) == 0 || input.Charge < 0 || math.IsNaN(input.Charge) {
		return nil, ErrInvalidInput
	}
	lat, lng, err := normalizeLocation(input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	maxDistance := float64(defaultMaxDistanceKm)
	if input.MaxDistanceKm != nil {
		if *input.MaxDistanceKm <= 0 {
			return nil, ErrInvalidInput
		}
		maxDistance = *input.MaxDistanceKm
	}

	worker, err := s.workers.Create(ctx, repository.CreateWorkerInput{
		UserID:        userID,
		Name:          name,
		Skills:        skills,
		Bio:           strings.TrimSpace(input.Bio),
		Address:       normalizeAddress(input.Address),
		Latitude:      lat,
		Longitude:     lng,
		Charge:        input.Charge,
		MaxDistanceKm: maxDistance,
		Phone:         trimOptional(input.Phone),
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.syncIndex(ctx, worker)
	return worker, nil
}

func (s *WorkerService) GetProfile(ctx context.Context, userID string) (*models.Worker, error) {
	worker, err := s.workers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}
	return worker, nil
}

func (s *WorkerService) UpdateProfile(ctx context.Context, userID string, input UpdateWorkerProfileInput) (*models.Worker, error) {
	update := repository.UpdateWorkerInput{
		Bio:           trimOptional(input.Bio),
		Charge:        input.Charge,
		MaxDistanceKm: input.MaxDistanceKm,
		Phone:         trimOptional(input.Phone),
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		update.Name = &name
	}
	if input.Skills != nil {
		skills := NormalizeSkills(*input.Skills)
		if len(skills) == 0 {
			return nil, ErrInvalidInput
		}
		update.Skills = &skills
	}
	if input.Address != nil {
		address := normalizeAddress(*input.Address)
		update.Address = &address
	}
	if input.Charge != nil && (*input.Charge < 0 || math.IsNaN(*input.Charge)) {
		return nil, ErrInvalidInput
	}
	if input.MaxDistanceKm != nil && *input.MaxDistanceKm <= 0 {
		return nil, ErrInvalidInput
	}
	if input.Latitude != nil || input.Longitude != nil {
		if input.Latitude == nil || input.Longitude == nil {
			return nil, ErrInvalidInput
		}
		lat, lng, err := normalizeLocation(input.Latitude, input.Longitude)
		if err != nil {
			return nil, err
		}
		update.Latitude = &lat
		update.Longitude = &lng
	}

	worker, err := s.workers.UpdatePartial(ctx, userID, update)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}

	s.syncIndex(ctx, worker)
	return worker, nil
}

func (s *WorkerService) SetAvailability(ctx context.Context, userID string, available bool) (*models.Worker, error) {
	worker, err := s.workers.SetAvailability(ctx, userID, available)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}

	s.syncIndex(ctx, worker)
	return worker, nil
}

// UploadAvatar stores a new avatar and removes the previous one on a best
// effort basis.
func (s *WorkerService) UploadAvatar(ctx context.Context, userID string, content io.Reader, filename string) (*models.Worker, error) {
	if s.avatars == nil {
		return nil, ErrStorageNotConfigured
	}

	current, err := s.workers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return nil, ErrInvalidInput
	}

	objectPath := fmt.Sprintf("workers/%s/%s%s", current.ID, uuid.NewString(), ext)
	avatarURL, err := s.avatars.Put(ctx, content, objectPath)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	worker, err := s.workers.UpdatePartial(ctx, userID, repository.UpdateWorkerInput{AvatarURL: &avatarURL})
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}

	if current.AvatarURL != nil && *current.AvatarURL != "" {
		if err := s.avatars.Remove(ctx, *current.AvatarURL); err != nil {
			s.logger.Warn("delete previous avatar failed", "workerId", worker.ID, "err", err)
		}
	}

	s.syncIndex(ctx, worker)
	return worker, nil
}

// GetPublic returns a worker for public display. Blocked workers are hidden.
func (s *WorkerService) GetPublic(ctx context.Context, workerID string) (*models.Worker, error) {
	if _, err := uuid.Parse(workerID); err != nil {
		return nil, ErrWorkerNotFound
	}
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, mapWorkerLookupError(err)
	}
	if worker.IsBlocked {
		return nil, ErrWorkerNotFound
	}
	return worker, nil
}

func (s *WorkerService) Categories(ctx context.Context) ([]models.SkillCount, error) {
	return s.workers.ListCategories(ctx)
}

func (s *WorkerService) syncIndex(ctx context.Context, worker *models.Worker) {
	syncWorkerIndex(ctx, s.indexer, s.logger, worker)
}

func syncWorkerIndex(ctx context.Context, indexer WorkerIndexer, logger *slog.Logger, worker *models.Worker) {
	if indexer == nil || worker == nil {
		return
	}
	if err := indexer.IndexWorker(ctx, *worker); err != nil {
		logger.Warn("worker index sync failed", "workerId", worker.ID, "err", err)
	}
}

// NormalizeSkills lowercases and trims skill tags, dropping empty and
// repeated entries.
func NormalizeSkills(skills []string) []string {
	normalized := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		normalized = append(normalized, skill)
	}
	return normalized
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// normalizeLocation returns the sentinel 0/0 when no coordinates are given.
func normalizeLocation(lat, lng *float64) (float64, float64, error) {
	if lat == nil && lng == nil {
		return 0, 0, nil
	}
	if lat == nil || lng == nil {
		return 0, 0, ErrInvalidInput
	}
	if math.IsNaN(*lat) || math.IsNaN(*lng) || *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return 0, 0, ErrInvalidInput
	}
	return *lat, *lng, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func mapWorkerLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkerNotFound
	}
	return err
}
