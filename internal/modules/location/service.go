// README: Location service feeds pilot positions and availability into the dispatch index.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"supportcarr/internal/log"
	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/types"
)

var ErrUnknownPilot = errors.New("pilot not found")

type SnapshotWriter interface {
	AppendSnapshot(ctx context.Context, snap Snapshot) error
}

type Service struct {
	engine    dispatch.IndexEngine
	snapshots SnapshotWriter
	log       zerolog.Logger
	now       func() time.Time
}

// NewService wires the index. snapshots may be nil to disable history.
func NewService(engine dispatch.IndexEngine, snapshots SnapshotWriter) *Service {
	return &Service{
		engine:    engine,
		snapshots: snapshots,
		log:       log.WithComponent("location"),
		now:       time.Now,
	}
}

// UpdatePilot stores the pilot's position and, when given, its availability.
// Unlike ride requests, a pilot position must be fully known.
func (s *Service) UpdatePilot(ctx context.Context, u Update) error {
	if u.PilotID == "" {
		return &ride.InvalidLocationError{Reason: "pilot id is required"}
	}
	if u.Position.HasZeroComponent() {
		return &ride.InvalidLocationError{Reason: "pilot coordinates are missing"}
	}
	if err := ride.ValidatePoint("pilot", u.Position); err != nil {
		return err
	}

	if err := s.engine.StorePilotLocation(ctx, u.PilotID, u.Position); err != nil {
		return err
	}
	if u.Available != nil {
		if err := s.engine.SetPilotAvailable(ctx, u.PilotID, *u.Available); err != nil {
			return err
		}
	}

	if s.snapshots != nil {
		snap := Snapshot{PilotID: u.PilotID, Position: u.Position, Available: u.Available, RecordedAt: s.now()}
		if err := s.snapshots.AppendSnapshot(ctx, snap); err != nil {
			// The live index is already updated; history is best effort.
			logger := log.FromContext(ctx, s.log)
			logger.Warn().Err(err).Str("pilot_id", string(u.PilotID)).Msg("snapshot append failed")
		}
	}
	return nil
}

func (s *Service) SetAvailability(ctx context.Context, pilotID types.ID, available bool) error {
	if pilotID == "" {
		return ride.ErrBadRequest
	}
	return s.engine.SetPilotAvailable(ctx, pilotID, available)
}

func (s *Service) Nearby(ctx context.Context, point types.Point, radiusMiles float64, limit int) ([]dispatch.Candidate, error) {
	if err := ride.ValidatePoint("search", point); err != nil {
		return nil, err
	}
	return s.engine.FindNearbyPilots(ctx, point, radiusMiles, limit)
}

// Pilot reports the pilot's flag and ride marker. A pilot with neither is unknown.
func (s *Service) Pilot(ctx context.Context, pilotID types.ID) (*Pilot, error) {
	status, err := s.engine.PilotStatus(ctx, pilotID)
	if err != nil {
		return nil, err
	}
	rideID, ok, err := s.engine.AssignedRide(ctx, pilotID)
	if err != nil {
		return nil, err
	}
	if status == dispatch.StatusUnknown && !ok {
		return nil, ErrUnknownPilot
	}
	p := &Pilot{ID: pilotID, Status: string(status)}
	if ok {
		p.AssignedRide = &rideID
	}
	return p, nil
}

func (s *Service) RemovePilot(ctx context.Context, pilotID types.ID) error {
	return s.engine.RemovePilot(ctx, pilotID)
}
