package discovery

import "math"

const (
	earthRadiusKm = 6371.0
	kmToMiles     = 0.621371
)

type Distance struct {
	Km     float64 `json:"km"`
	Miles  float64 `json:"miles"`
	Meters int64   `json:"meters"`
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func NewDistance(km float64) Distance {
	return Distance{
		Km:     round2(km),
		Miles:  round2(km * kmToMiles),
		Meters: int64(math.Round(km * 1000)),
	}
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
