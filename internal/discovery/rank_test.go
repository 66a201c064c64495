package discovery

import (
	"testing"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(value float64) *float64 { return &value }

func TestHaversine(t *testing.T) {
	assert.Equal(t, 0.0, round2(HaversineKm(12.97, 77.59, 12.97, 77.59)))
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 0, 1), 0.01)
	assert.InDelta(t, 111.19, HaversineKm(0, 1, 0, 0), 0.01)
}

func TestNewDistance(t *testing.T) {
	distance := NewDistance(HaversineKm(0, 0, 0, 1))

	assert.Equal(t, 111.19, distance.Km)
	assert.Equal(t, 69.09, distance.Miles)
	assert.Equal(t, int64(111195), distance.Meters)
}

func TestAnnotateWithoutOrigin(t *testing.T) {
	ranked := Annotate([]models.Worker{worker("a", "A", nil, 1, 1)}, nil)

	require.Len(t, ranked, 1)
	assert.Nil(t, ranked[0].Distance)
}

func TestAnnotateSkipsSentinel(t *testing.T) {
	origin := &Coordinates{Latitude: 0, Longitude: 0}
	ranked := Annotate([]models.Worker{
		worker("sentinel", "S", nil, 0, 0),
		worker("same-spot", "P", nil, 0, 0.0000001),
	}, origin)

	require.Len(t, ranked, 2)
	assert.Nil(t, ranked[0].Distance)
	require.NotNil(t, ranked[1].Distance)
	assert.Equal(t, 0.0, ranked[1].Distance.Km)
}

func TestRankByDistancePlacesUnannotatedLast(t *testing.T) {
	origin := &Coordinates{Latitude: 13.0, Longitude: 80.0}
	ranked := Annotate([]models.Worker{
		worker("none", "N", nil, 0, 0),
		worker("far", "F", nil, 13.2, 80.0),
		worker("near", "C", nil, 13.05, 80.0),
	}, origin)

	Rank(ranked, true)

	assert.Equal(t, []string{"near", "far", "none"}, rankedIDs(ranked))
	assert.LessOrEqual(t, ranked[0].Distance.Km, ranked[1].Distance.Km)
}

func TestRankByRatingThenName(t *testing.T) {
	zara := worker("zara", "Zara", nil, 0, 0)
	zara.AverageRating = rating(4.5)
	anand := worker("anand", "Anand", nil, 0, 0)
	anand.AverageRating = rating(4.8)
	bala := worker("bala", "Bala", nil, 0, 0)
	bala.AverageRating = rating(4.5)

	ranked := Annotate([]models.Worker{zara, anand, bala}, nil)
	Rank(ranked, false)

	assert.Equal(t, []string{"anand", "bala", "zara"}, rankedIDs(ranked))
}

func TestRankTreatsMissingRatingAsZero(t *testing.T) {
	unrated := worker("unrated", "Aaron", nil, 0, 0)
	low := worker("low", "Zed", nil, 0, 0)
	low.AverageRating = rating(0.5)

	ranked := Annotate([]models.Worker{unrated, low}, nil)
	Rank(ranked, false)

	assert.Equal(t, []string{"low", "unrated"}, rankedIDs(ranked))
}

func TestRankNameTieBreakIsCaseAndAccentAware(t *testing.T) {
	ranked := Annotate([]models.Worker{
		worker("zoe", "Zoe", nil, 0, 0),
		worker("emile", "Émile", nil, 0, 0),
		worker("bala", "bala", nil, 0, 0),
		worker("anand", "Anand", nil, 0, 0),
	}, nil)

	Rank(ranked, false)

	assert.Equal(t, []string{"anand", "bala", "emile", "zoe"}, rankedIDs(ranked))
}

func TestRankLiteralCases(t *testing.T) {
	km := func(value float64) *float64 { return &value }
	at := func(id, name string, dist *float64, stars *float64) RankedWorker {
		entry := RankedWorker{Worker: worker(id, name, nil, 0, 0)}
		entry.AverageRating = stars
		if dist != nil {
			entry.Distance = &Distance{Km: *dist}
		}
		return entry
	}

	tests := []struct {
		name          string
		input         []RankedWorker
		locationAware bool
		want          []string
	}{
		{
			name: "distances with an unplaced worker",
			input: []RankedWorker{
				at("w52", "Five", km(5.2), nil),
				at("unplaced", "Aaron", nil, rating(5)),
				at("w11", "One", km(1.1), nil),
				at("w33", "Three", km(3.3), nil),
			},
			locationAware: true,
			want:          []string{"w11", "w33", "w52", "unplaced"},
		},
		{
			name: "equal ratings fall back to name",
			input: []RankedWorker{
				at("bala", "Bala", nil, rating(4.5)),
				at("anand", "Anand", nil, rating(4.5)),
			},
			want: []string{"anand", "bala"},
		},
		{
			name: "equal ratings already in name order",
			input: []RankedWorker{
				at("anand", "Anand", nil, rating(4.5)),
				at("bala", "Bala", nil, rating(4.5)),
			},
			want: []string{"anand", "bala"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			Rank(tc.input, tc.locationAware)
			assert.Equal(t, tc.want, rankedIDs(tc.input))
		})
	}
}
