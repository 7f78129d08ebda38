// README: Ride aggregate and repository contract.
package ride

import (
	"context"
	"time"

	"github.com/google/uuid"

	"supportcarr/internal/types"
)

type Ride struct {
	ID            types.ID
	RiderID       types.ID
	Pickup        types.Point
	Dropoff       types.Point
	Status        Status
	BikeType      *string
	Notes         *string
	RiderPhone    *string
	DistanceMiles float64
	Price         types.Money
	DriverID      *types.ID
	// StatusVersion counts status writes; UpdateStatus only applies when it
	// still matches the stored row.
	StatusVersion int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StatusEvent is one row of a ride's status history.
type StatusEvent struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	Event      Event
	CreatedAt  time.Time
}

func NewRide(riderID types.ID, pickup, dropoff types.Point, now time.Time) *Ride {
	return &Ride{
		ID:        types.ID(uuid.NewString()),
		RiderID:   riderID,
		Pickup:    pickup,
		Dropoff:   dropoff,
		Status:    StatusRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy, so callers never share pointer fields.
func (r *Ride) Clone() *Ride {
	c := *r
	c.BikeType = cloneString(r.BikeType)
	c.Notes = cloneString(r.Notes)
	c.RiderPhone = cloneString(r.RiderPhone)
	if r.DriverID != nil {
		d := *r.DriverID
		c.DriverID = &d
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Repository persists rides. Get and FindLatestByPhone return ErrNotFound
// for unknown rides; Create returns ErrAlreadyExists on id reuse.
// UpdateStatus moves a ride from one status to another only while the stored
// row still has status from at the given version, and reports whether it did.
// A nil driverID keeps the stored driver.
type Repository interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, at time.Time) (bool, error)
	FindLatestByPhone(ctx context.Context, phone string) (*Ride, error)
	AppendEvent(ctx context.Context, e *StatusEvent) error
	ListEvents(ctx context.Context, rideID types.ID) ([]StatusEvent, error)
}
