// Package geo contains pure great-circle helpers shared by the distance
// estimator and the in-memory pilot index.
package geo

import (
	"math"

	"supportcarr/internal/types"
)

const (
	EarthRadiusMiles = 3959.0
	EarthRadiusKm    = 6371.0

	// KmPerMile is the conversion the Redis GEO queries use for radii.
	KmPerMile = 1.60934
)

// Haversine returns the great-circle distance between a and b in the unit of
// radius.
func Haversine(a, b types.Point, radius float64) float64 {
	dLat := DegreesToRadians(b.Lat - a.Lat)
	dLng := DegreesToRadians(b.Lng - a.Lng)

	rLat1 := DegreesToRadians(a.Lat)
	rLat2 := DegreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return radius * c
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}

func KmToMeters(km float64) float64 {
	return km * 1000.0
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function. Equal
// distances keep their input order.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
