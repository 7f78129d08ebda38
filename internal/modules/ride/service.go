// README: Ride service: request intake, pilot dispatch and event-driven status changes.
package ride

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"supportcarr/internal/config"
	"supportcarr/internal/log"
	"supportcarr/internal/metrics"
	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/types"
)

type Pricing interface {
	Quote(ctx context.Context, distanceMiles float64) (types.Money, error)
}

type Service struct {
	repo     Repository
	dispatch dispatch.Engine
	pricing  Pricing
	cfg      config.DispatchConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, engine dispatch.Engine, pricing Pricing, cfg config.DispatchConfig) *Service {
	return &Service{
		repo:     repo,
		dispatch: engine,
		pricing:  pricing,
		cfg:      cfg,
		log:      log.WithComponent("ride"),
		now:      time.Now,
	}
}

type RequestCommand struct {
	RiderID    types.ID
	Pickup     types.Point
	Dropoff    types.Point
	BikeType   *string
	Notes      *string
	RiderPhone *string
}

type EventCommand struct {
	RideID types.ID
	Event  Event
}

// Request validates and prices a ride, stores it as requested and tries to
// hand it to the nearest pilot. A failed pilot search leaves the ride
// requested and is not reported to the caller.
func (s *Service) Request(ctx context.Context, cmd RequestCommand) (*Ride, error) {
	if cmd.RiderID == "" {
		metrics.RecordRideRequest(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: rider id is required", ErrBadRequest)
	}
	if err := ValidatePoint("pickup", cmd.Pickup); err != nil {
		metrics.RecordRideRequest(metrics.OutcomeRejected)
		return nil, err
	}
	if err := ValidatePoint("dropoff", cmd.Dropoff); err != nil {
		metrics.RecordRideRequest(metrics.OutcomeRejected)
		return nil, err
	}

	distance := EstimateDistanceMiles(cmd.Pickup, cmd.Dropoff)
	if err := EnforcePilotDistanceLimit(distance); err != nil {
		metrics.RecordRideRequest(metrics.OutcomeRejected)
		return nil, err
	}

	price, err := s.pricing.Quote(ctx, distance)
	if err != nil {
		metrics.RecordRideRequest(metrics.OutcomeFailed)
		return nil, fmt.Errorf("quote ride: %w", err)
	}

	r := NewRide(cmd.RiderID, cmd.Pickup, cmd.Dropoff, s.now())
	r.BikeType = cmd.BikeType
	r.Notes = cmd.Notes
	r.RiderPhone = cmd.RiderPhone
	r.DistanceMiles = distance
	r.Price = price
	if err := s.repo.Create(ctx, r); err != nil {
		metrics.RecordRideRequest(metrics.OutcomeFailed)
		return nil, err
	}

	logger := log.FromContext(ctx, s.log).With().Str("ride_id", string(r.ID)).Logger()
	pilotID, ok := s.choosePilot(ctx, logger, r.Pickup)
	if !ok {
		metrics.RecordRideRequest(metrics.OutcomeUnassigned)
		logger.Info().Float64("distance_miles", distance).Msg("ride requested without pilot")
		return r, nil
	}

	if err := s.assign(ctx, r, pilotID); err != nil {
		metrics.RecordRideRequest(metrics.OutcomeFailed)
		return nil, err
	}
	metrics.RecordRideRequest(metrics.OutcomeAssigned)
	logger.Info().Str("pilot_id", string(pilotID)).Float64("distance_miles", distance).Msg("ride assigned")
	return r, nil
}

func (s *Service) choosePilot(ctx context.Context, logger zerolog.Logger, pickup types.Point) (types.ID, bool) {
	dctx, cancel := s.dispatchContext(ctx)
	defer cancel()

	candidates, err := s.dispatch.FindNearbyPilots(dctx, pickup, s.cfg.RadiusMiles, s.cfg.CandidateLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("pilot search failed")
		return "", false
	}

	registry, canCheck := s.dispatch.(dispatch.Registry)
	for _, c := range candidates {
		if !s.cfg.SkipBusyPilots || !canCheck {
			return c.PilotID, true
		}
		status, err := registry.PilotStatus(dctx, c.PilotID)
		if err != nil {
			logger.Warn().Err(err).Str("pilot_id", string(c.PilotID)).Msg("pilot status lookup failed")
			return "", false
		}
		if status != dispatch.StatusBusy {
			return c.PilotID, true
		}
	}
	return "", false
}

func (s *Service) assign(ctx context.Context, r *Ride, pilotID types.ID) error {
	from := r.Status
	next, err := ApplyEvent(from, EventAccept)
	if err != nil {
		return err
	}

	dctx, cancel := s.dispatchContext(ctx)
	defer cancel()
	if err := s.dispatch.MarkAssigned(dctx, pilotID, r.ID); err != nil {
		return err
	}

	if err := s.updateStatus(ctx, r, next, &pilotID); err != nil {
		return err
	}
	s.recordTransition(ctx, r.ID, from, next, EventAccept)
	return nil
}

// Apply moves a ride along by one event and persists the new status.
func (s *Service) Apply(ctx context.Context, cmd EventCommand) (*Ride, error) {
	r, err := s.repo.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	next, err := ApplyEvent(from, cmd.Event)
	if err != nil {
		return nil, err
	}
	if err := s.updateStatus(ctx, r, next, nil); err != nil {
		return nil, err
	}
	s.recordTransition(ctx, r.ID, from, next, cmd.Event)
	logger := log.FromContext(ctx, s.log)
	logger.Info().
		Str("ride_id", string(r.ID)).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("ride status changed")
	return r, nil
}

// updateStatus writes r's move to next and mirrors it on r. It returns
// ErrConflict when another writer changed the ride since r was read.
func (s *Service) updateStatus(ctx context.Context, r *Ride, next Status, driverID *types.ID) error {
	now := s.now()
	ok, err := s.repo.UpdateStatus(ctx, r.ID, r.Status, next, r.StatusVersion, driverID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	r.Status = next
	r.StatusVersion++
	if driverID != nil {
		r.DriverID = driverID
	}
	r.UpdatedAt = now
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.repo.Get(ctx, id)
}

// History returns the ride's status changes oldest first.
func (s *Service) History(ctx context.Context, id types.ID) ([]StatusEvent, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, id)
}

// FindByPhone returns the rider's most recent ride.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Ride, error) {
	return s.repo.FindLatestByPhone(ctx, phone)
}

func (s *Service) recordTransition(ctx context.Context, id types.ID, from, to Status, e Event) {
	metrics.RecordTransition(string(from), string(to))
	err := s.repo.AppendEvent(ctx, &StatusEvent{
		RideID:     id,
		FromStatus: from,
		ToStatus:   to,
		Event:      e,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("ride_id", string(id)).Msg("append status event failed")
	}
}

func (s *Service) dispatchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// ValidatePoint rejects coordinates outside the WGS84 range. Zero components
// are allowed; the estimator treats them as unknown.
func ValidatePoint(field string, p types.Point) error {
	switch {
	case math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0):
		return &InvalidLocationError{Reason: field + " coordinates must be finite"}
	case p.Lat < -90 || p.Lat > 90:
		return &InvalidLocationError{Reason: fmt.Sprintf("%s latitude %v out of range", field, p.Lat)}
	case p.Lng < -180 || p.Lng > 180:
		return &InvalidLocationError{Reason: fmt.Sprintf("%s longitude %v out of range", field, p.Lng)}
	}
	return nil
}
