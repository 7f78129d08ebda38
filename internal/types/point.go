// README: Shared identifiers and coordinates.
package types

// ID is an opaque identifier for rides, riders and pilots.
type ID string

func (id ID) String() string {
	return string(id)
}

// Point is a WGS84 coordinate in decimal degrees. The zero value is treated as
// "missing" by the distance estimator rather than as a real location.
type Point struct {
	Lat float64
	Lng float64
}

// HasZeroComponent reports whether either the latitude or the longitude is
// exactly zero.
func (p Point) HasZeroComponent() bool {
	return p.Lat == 0 || p.Lng == 0
}
