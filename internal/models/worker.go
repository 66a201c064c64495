package models

import "time"

// GeoPoint is a GeoJSON point. Coordinates are ordered [longitude, latitude];
// the zero point is the "no location on file" sentinel.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// IsSentinel reports whether the point is [0,0], which never denotes a real placement.
func (p GeoPoint) IsSentinel() bool {
	return p.Coordinates[0] == 0 && p.Coordinates[1] == 0
}

type Worker struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Skills        []string  `json:"skills"`
	Bio           string    `json:"bio"`
	Address       string    `json:"address"`
	Location      GeoPoint  `json:"location"`
	Charge        float64   `json:"charge"`
	IsAvailable   bool      `json:"is_available"`
	IsBlocked     bool      `json:"is_blocked"`
	AverageRating *float64  `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	MaxDistanceKm float64   `json:"max_distance_km"`
	Phone         *string   `json:"phone,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Rating returns the average rating, treating a missing value as 0.
func (w Worker) Rating() float64 {
	if w.AverageRating == nil {
		return 0
	}
	return *w.AverageRating
}

// Discoverable reports whether the worker may appear in search results.
func (w Worker) Discoverable() bool {
	return w.IsAvailable && !w.IsBlocked
}

type SkillCount struct {
	Skill   string `json:"skill"`
	Workers int    `json:"workers"`
}
