package discovery

import (
	"context"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
)

// Directory is the read side of the worker store. When a Filter carries a
// Proximity, results are ordered nearest first.
type Directory interface {
	FindMatching(ctx context.Context, filter Filter, opts FindOptions) ([]models.Worker, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

type Service struct {
	directory Directory
}

func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

type Result struct {
	Request SearchRequest
	Workers []RankedWorker
}

// Search resolves, annotates and ranks workers for a validated request.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*Result, error) {
	candidates, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	ranked := Annotate(candidates, req.Origin)
	Rank(ranked, req.LocationAware())

	return &Result{Request: req, Workers: ranked}, nil
}

// resolve runs the primary query and, for location-aware searches with a
// locality string that did not fill the page, the address fallback query.
func (s *Service) resolve(ctx context.Context, req SearchRequest) ([]models.Worker, error) {
	base := BuildFilter(req)

	if !req.LocationAware() {
		if req.LocationText != "" {
			base.AddressText = req.LocationText
		}
		workers, err := s.directory.FindMatching(ctx, base, FindOptions{Limit: PageSize})
		if err != nil {
			return nil, &DirectoryError{Op: "find", Err: err}
		}
		return capPage(workers), nil
	}

	nearby, err := s.directory.FindMatching(ctx, proximityFilter(base, req), FindOptions{Limit: PageSize})
	if err != nil {
		return nil, &DirectoryError{Op: "proximity query", Err: err}
	}
	nearby = capPage(nearby)

	remaining := PageSize - len(nearby)
	if remaining <= 0 || req.LocationText == "" {
		return nearby, nil
	}

	fallback, err := s.directory.FindMatching(ctx, fallbackFilter(base, req), FindOptions{Limit: remaining})
	if err != nil {
		return nil, &DirectoryError{Op: "address fallback query", Err: err}
	}
	if len(fallback) > remaining {
		fallback = fallback[:remaining]
	}

	return append(nearby, fallback...), nil
}

func capPage(workers []models.Worker) []models.Worker {
	if len(workers) > PageSize {
		return workers[:PageSize]
	}
	return workers
}
