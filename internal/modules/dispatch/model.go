// README: Dispatch contract shared by the Redis-backed and in-memory pilot indexes.
package dispatch

import (
	"context"

	"supportcarr/internal/types"
)

const DefaultKeyPrefix = "supportcarr"

// Config namespaces every key the engine writes.
type Config struct {
	KeyPrefix string
}

func (c Config) prefix() string {
	if c.KeyPrefix == "" {
		return DefaultKeyPrefix
	}
	return c.KeyPrefix
}

// PilotStatus is the availability flag kept next to (not inside) the geo index.
type PilotStatus string

const (
	StatusUnknown   PilotStatus = ""
	StatusAvailable PilotStatus = "available"
	StatusBusy      PilotStatus = "busy"
)

func statusFor(available bool) PilotStatus {
	if available {
		return StatusAvailable
	}
	return StatusBusy
}

// Candidate is one result of a nearest-pilot query. DistanceMeters is nil
// when the index did not report a distance.
type Candidate struct {
	PilotID        types.ID
	DistanceMeters *float64
}

// Engine tracks pilot positions and reservations.
//
// FindNearbyPilots does not look at the availability flag: positions and
// availability are two separate structures and choosing an available pilot
// is up to the caller. Concurrent callers may pick the same pilot; the last
// MarkAssigned wins.
type Engine interface {
	StorePilotLocation(ctx context.Context, pilotID types.ID, location types.Point) error
	SetPilotAvailable(ctx context.Context, pilotID types.ID, available bool) error
	FindNearbyPilots(ctx context.Context, location types.Point, radiusMiles float64, limit int) ([]Candidate, error)
	MarkAssigned(ctx context.Context, pilotID, rideID types.ID) error
}

// Registry exposes the bookkeeping reads and removal that sit next to Engine.
type Registry interface {
	PilotStatus(ctx context.Context, pilotID types.ID) (PilotStatus, error)
	AssignedRide(ctx context.Context, pilotID types.ID) (types.ID, bool, error)
	RemovePilot(ctx context.Context, pilotID types.ID) error
}

// IndexEngine is what the production wiring hands around.
type IndexEngine interface {
	Engine
	Registry
}
