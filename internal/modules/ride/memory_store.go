package ride

import (
	"context"
	"sync"
	"time"

	"supportcarr/internal/types"
)

// MemoryStore is a Repository held in process memory. It stores and returns
// copies, so callers can mutate what they get back.
type MemoryStore struct {
	mu     sync.RWMutex
	rides  map[types.ID]*Ride
	events []StatusEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[types.ID]*Ride)}
}

func (m *MemoryStore) Create(_ context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; ok {
		return ErrAlreadyExists
	}
	m.rides[r.ID] = r.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, driverID *types.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	if driverID != nil {
		d := *driverID
		r.DriverID = &d
	}
	r.UpdatedAt = at
	return true, nil
}

func (m *MemoryStore) FindLatestByPhone(_ context.Context, phone string) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *Ride
	for _, r := range m.rides {
		if r.RiderPhone == nil || *r.RiderPhone != phone {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *StatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := *e
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return nil
}

func (m *MemoryStore) ListEvents(_ context.Context, rideID types.ID) ([]StatusEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []StatusEvent
	for _, e := range m.events {
		if e.RideID == rideID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ Repository = (*MemoryStore)(nil)
