package dispatch

import (
	"context"
	"sync"

	"supportcarr/internal/geo"
	"supportcarr/internal/types"
)

// MemoryEngine is an in-process Engine for tests and single-node development.
// Positions, statuses and ride markers live in three separate maps to mirror
// the Redis layout.
type MemoryEngine struct {
	mu        sync.RWMutex
	positions map[types.ID]types.Point
	statuses  map[types.ID]PilotStatus
	rides     map[types.ID]types.ID
	err       error
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		positions: make(map[types.ID]types.Point),
		statuses:  make(map[types.ID]PilotStatus),
		rides:     make(map[types.ID]types.ID),
	}
}

// SetErr makes every following operation fail with err wrapped in an Error.
// A nil err restores normal behavior.
func (m *MemoryEngine) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryEngine) StorePilotLocation(_ context.Context, pilotID types.ID, location types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return failure("store pilot location", m.err)
	}
	m.positions[pilotID] = location
	return nil
}

func (m *MemoryEngine) SetPilotAvailable(_ context.Context, pilotID types.ID, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return failure("set pilot status", m.err)
	}
	m.statuses[pilotID] = statusFor(available)
	return nil
}

func (m *MemoryEngine) FindNearbyPilots(_ context.Context, location types.Point, radiusMiles float64, limit int) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, failure("find nearby pilots", m.err)
	}
	if limit <= 0 {
		return []Candidate{}, nil
	}

	type hit struct {
		id types.ID
		km float64
	}
	radiusKm := geo.MilesToKm(radiusMiles)
	var hits []hit
	for id, p := range m.positions {
		km := geo.Haversine(location, p, geo.EarthRadiusKm)
		if km <= radiusKm {
			hits = append(hits, hit{id: id, km: km})
		}
	}
	geo.SortByDistance(hits, func(h hit) float64 { return h.km })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Candidate, len(hits))
	for i, h := range hits {
		meters := geo.KmToMeters(h.km)
		out[i] = Candidate{PilotID: h.id, DistanceMeters: &meters}
	}
	return out, nil
}

func (m *MemoryEngine) MarkAssigned(_ context.Context, pilotID, rideID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return failure("mark pilot assigned", m.err)
	}
	m.statuses[pilotID] = StatusBusy
	m.rides[pilotID] = rideID
	return nil
}

func (m *MemoryEngine) PilotStatus(_ context.Context, pilotID types.ID) (PilotStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return StatusUnknown, failure("read pilot status", m.err)
	}
	return m.statuses[pilotID], nil
}

func (m *MemoryEngine) AssignedRide(_ context.Context, pilotID types.ID) (types.ID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", false, failure("read pilot ride", m.err)
	}
	r, ok := m.rides[pilotID]
	return r, ok, nil
}

func (m *MemoryEngine) RemovePilot(_ context.Context, pilotID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return failure("remove pilot", m.err)
	}
	delete(m.positions, pilotID)
	delete(m.statuses, pilotID)
	return nil
}

var (
	_ IndexEngine = (*MemoryEngine)(nil)
	_ IndexEngine = (*RedisEngine)(nil)
)
