// README: Pilot location snapshot for persistence and replay.
package location

import (
	"time"

	"supportcarr/internal/types"
)

type Snapshot struct {
	ID         int64
	PilotID    types.ID
	Position   types.Point
	Available  *bool
	RecordedAt time.Time
}

type Update struct {
	PilotID  types.ID
	Position types.Point
	// Available is optional; nil leaves the availability flag untouched.
	Available *bool
}

// Pilot is the dispatch-side view of one pilot.
type Pilot struct {
	ID           types.ID
	Status       string
	AssignedRide *types.ID
}
