// Package discovery finds discoverable workers near a caller and ranks them.
//
// A search runs as a short sequential pipeline: raw query parameters are
// normalized into a SearchRequest, turned into a Filter, resolved against a
// Directory (proximity query, then an optional address fallback), annotated
// with Haversine distances and sorted.
package discovery

import (
	"math"
	"strconv"
	"strings"
)

const (
	// PageSize caps the merged result set of one search.
	PageSize = 50

	DefaultRadiusKm = 50.0
)

// RawQuery holds the untrusted query parameters of a search call.
type RawQuery struct {
	Search         string
	Categories     string
	Lat            string
	Lng            string
	LocationString string
	Radius         string
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// SearchRequest is the normalized form of a RawQuery.
type SearchRequest struct {
	FreeText     string
	Categories   []string
	Origin       *Coordinates
	RadiusKm     float64
	LocationText string
}

func (r SearchRequest) LocationAware() bool {
	return r.Origin != nil
}

// ParseSearchRequest normalizes and validates raw parameters. Coordinates are
// only considered supplied when lat or lng is non-empty, and then both must
// parse as finite numbers within range.
func ParseSearchRequest(raw RawQuery) (SearchRequest, error) {
	req := SearchRequest{
		FreeText:     normalizeText(raw.Search),
		Categories:   ParseCategories(raw.Categories),
		LocationText: normalizeText(raw.LocationString),
	}

	lat, lng := strings.TrimSpace(raw.Lat), strings.TrimSpace(raw.Lng)
	if lat != "" || lng != "" {
		origin, err := parseCoordinates(lat, lng)
		if err != nil {
			return SearchRequest{}, err
		}
		req.Origin = origin
	}

	radius, err := parseRadius(raw.Radius)
	if err != nil {
		return SearchRequest{}, err
	}
	req.RadiusKm = radius

	return req, nil
}

// ParseCategories splits a comma-separated list into lowercase tokens,
// dropping empty and repeated entries while keeping first-seen order.
func ParseCategories(raw string) []string {
	categories := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		token := normalizeText(part)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		categories = append(categories, token)
	}
	return categories
}

func parseCoordinates(rawLat, rawLng string) (*Coordinates, error) {
	lat, latErr := parseFinite(rawLat)
	lng, lngErr := parseFinite(rawLng)
	if latErr != nil || lngErr != nil {
		return nil, &ValidationError{Field: "coordinates", Message: "invalid coordinates"}
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, &ValidationError{Field: "coordinates", Message: "invalid coordinates"}
	}
	return &Coordinates{Latitude: lat, Longitude: lng}, nil
}

func parseRadius(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRadiusKm, nil
	}
	radius, err := parseFinite(raw)
	if err != nil || radius <= 0 {
		return 0, &ValidationError{Field: "radius", Message: "invalid radius"}
	}
	return radius, nil
}

func parseFinite(raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrRange
	}
	return value, nil
}

func normalizeText(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
