package discovery

import (
	"math"
	"sort"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type RankedWorker struct {
	models.Worker
	Distance *Distance `json:"distance,omitempty"`
}

func (w RankedWorker) distanceKm() float64 {
	if w.Distance == nil {
		return math.Inf(1)
	}
	return w.Distance.Km
}

// Annotate attaches a distance block to every worker with a real placement.
// Sentinel workers and searches without an origin get no distance.
func Annotate(workers []models.Worker, origin *Coordinates) []RankedWorker {
	ranked := make([]RankedWorker, 0, len(workers))
	for _, worker := range workers {
		entry := RankedWorker{Worker: worker}
		if origin != nil && !worker.Location.IsSentinel() {
			km := HaversineKm(
				origin.Latitude, origin.Longitude,
				worker.Location.Latitude(), worker.Location.Longitude(),
			)
			distance := NewDistance(km)
			entry.Distance = &distance
		}
		ranked = append(ranked, entry)
	}
	return ranked
}

// Rank orders workers in place. Location-aware searches sort by distance with
// distance-less workers last; otherwise by rating descending, then name in
// case-insensitive English collation order.
func Rank(workers []RankedWorker, locationAware bool) {
	if locationAware {
		sort.SliceStable(workers, func(i, j int) bool {
			return workers[i].distanceKm() < workers[j].distanceKm()
		})
		return
	}

	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(workers, func(i, j int) bool {
		left, right := workers[i].Rating(), workers[j].Rating()
		if left != right {
			return left > right
		}
		return collator.CompareString(workers[i].Name, workers[j].Name) < 0
	})
}
