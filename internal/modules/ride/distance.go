package ride

import (
	"supportcarr/internal/geo"
	"supportcarr/internal/types"
)

const (
	// FallbackDistanceMiles is used when either endpoint has a zero coordinate.
	FallbackDistanceMiles = 2.0
	MinDistanceMiles      = 1.0
	PilotLimitMiles       = 10.0
)

// EstimateDistanceMiles returns the great-circle distance between pickup and
// dropoff, never less than one mile. Zero coordinates mean "unknown".
func EstimateDistanceMiles(pickup, dropoff types.Point) float64 {
	if pickup.HasZeroComponent() || dropoff.HasZeroComponent() {
		return FallbackDistanceMiles
	}
	d := geo.Haversine(pickup, dropoff, geo.EarthRadiusMiles)
	if d < MinDistanceMiles {
		return MinDistanceMiles
	}
	return d
}

func EnforcePilotDistanceLimit(distanceMiles float64) error {
	if distanceMiles > PilotLimitMiles {
		return &PilotLimitError{DistanceMiles: distanceMiles}
	}
	return nil
}
