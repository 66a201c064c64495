package discovery

import (
	"context"
	"sort"
	"strings"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
)

// memoryDirectory evaluates filters over an in-memory worker set and records
// every call it receives.
type memoryDirectory struct {
	workers []models.Worker
	calls   []directoryCall
	failOn  int
	err     error
}

type directoryCall struct {
	filter Filter
	opts   FindOptions
}

func (d *memoryDirectory) FindMatching(_ context.Context, filter Filter, opts FindOptions) ([]models.Worker, error) {
	d.calls = append(d.calls, directoryCall{filter: filter, opts: opts})
	if d.err != nil && len(d.calls) == d.failOn {
		return nil, d.err
	}

	matched := make([]models.Worker, 0)
	for _, worker := range d.workers {
		if matchesFilter(worker, filter) {
			matched = append(matched, worker)
		}
	}

	if filter.Near != nil {
		origin := filter.Near.Origin
		sort.SliceStable(matched, func(i, j int) bool {
			return metersFrom(origin, matched[i]) < metersFrom(origin, matched[j])
		})
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (d *memoryDirectory) Count(ctx context.Context, filter Filter) (int, error) {
	workers, err := d.FindMatching(ctx, filter, FindOptions{})
	return len(workers), err
}

func matchesFilter(worker models.Worker, filter Filter) bool {
	if !worker.Discoverable() {
		return false
	}

	switch filter.Scope {
	case PlacedOnly:
		if worker.Location.IsSentinel() {
			return false
		}
	case SentinelOnly:
		if !worker.Location.IsSentinel() {
			return false
		}
	}

	if len(filter.Categories) > 0 {
		found := false
		for _, category := range filter.Categories {
			if anyContains(worker.Skills, category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.FreeText != "" {
		text := filter.FreeText
		if !anyContains(worker.Skills, text) &&
			!contains(worker.Bio, text) &&
			!contains(worker.Name, text) &&
			!contains(worker.Address, text) {
			return false
		}
	}

	if filter.AddressText != "" && !contains(worker.Address, filter.AddressText) {
		return false
	}

	if filter.Near != nil && metersFrom(filter.Near.Origin, worker) > filter.Near.RadiusMeters {
		return false
	}

	return true
}

func metersFrom(origin Coordinates, worker models.Worker) float64 {
	return HaversineKm(origin.Latitude, origin.Longitude, worker.Location.Latitude(), worker.Location.Longitude()) * 1000
}

func anyContains(values []string, needle string) bool {
	for _, value := range values {
		if contains(value, needle) {
			return true
		}
	}
	return false
}

func contains(value, needle string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
