// README: Dispatch engine backed by Redis GEO, a status hash and per-pilot ride markers.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"supportcarr/internal/geo"
	"supportcarr/internal/metrics"
	"supportcarr/internal/types"
)

// RedisEngine keeps three structures per prefix:
//
//	{prefix}:drivers:geo         GEO set of pilot positions
//	{prefix}:drivers:status      hash pilot -> available|busy
//	{prefix}:pilot:{id}:ride     string holding the assigned ride
type RedisEngine struct {
	redis *redis.Client
	cfg   Config
	log   zerolog.Logger
}

func NewRedisEngine(client *redis.Client, cfg Config, logger zerolog.Logger) *RedisEngine {
	return &RedisEngine{redis: client, cfg: cfg, log: logger}
}

func (e *RedisEngine) geoKey() string {
	return e.cfg.prefix() + ":drivers:geo"
}

func (e *RedisEngine) statusKey() string {
	return e.cfg.prefix() + ":drivers:status"
}

func (e *RedisEngine) rideKey(pilotID types.ID) string {
	return fmt.Sprintf("%s:pilot:%s:ride", e.cfg.prefix(), string(pilotID))
}

func (e *RedisEngine) StorePilotLocation(ctx context.Context, pilotID types.ID, location types.Point) error {
	err := e.redis.GeoAdd(ctx, e.geoKey(), &redis.GeoLocation{
		Name:      string(pilotID),
		Longitude: location.Lng,
		Latitude:  location.Lat,
	}).Err()
	metrics.RecordDispatchOp("store_location", err)
	return failure("store pilot location", err)
}

func (e *RedisEngine) SetPilotAvailable(ctx context.Context, pilotID types.ID, available bool) error {
	err := e.redis.HSet(ctx, e.statusKey(), string(pilotID), string(statusFor(available))).Err()
	metrics.RecordDispatchOp("set_available", err)
	return failure("set pilot status", err)
}

func (e *RedisEngine) FindNearbyPilots(ctx context.Context, location types.Point, radiusMiles float64, limit int) ([]Candidate, error) {
	if limit <= 0 {
		return []Candidate{}, nil
	}
	results, err := e.redis.GeoRadius(ctx, e.geoKey(), location.Lng, location.Lat, &redis.GeoRadiusQuery{
		Radius:   geo.MilesToKm(radiusMiles),
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
		Count:    limit,
	}).Result()
	metrics.RecordDispatchOp("find_nearby", err)
	if err != nil {
		return nil, failure("find nearby pilots", err)
	}

	candidates := make([]Candidate, len(results))
	for i, r := range results {
		meters := geo.KmToMeters(r.Dist)
		candidates[i] = Candidate{PilotID: types.ID(r.Name), DistanceMeters: &meters}
	}
	e.log.Debug().
		Float64("radius_miles", radiusMiles).
		Int("limit", limit).
		Int("found", len(candidates)).
		Msg("nearby pilot search")
	return candidates, nil
}

// MarkAssigned flips the pilot to busy and records the ride in one MULTI/EXEC,
// so both writes land together or not at all. Two callers racing for the same
// pilot both succeed and the later transaction's ride is what remains.
func (e *RedisEngine) MarkAssigned(ctx context.Context, pilotID, rideID types.ID) error {
	_, err := e.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, e.statusKey(), string(pilotID), string(StatusBusy))
		pipe.Set(ctx, e.rideKey(pilotID), string(rideID), 0)
		return nil
	})
	metrics.RecordDispatchOp("mark_assigned", err)
	if err != nil {
		return failure("mark pilot assigned", err)
	}
	e.log.Info().Str("pilot_id", string(pilotID)).Str("ride_id", string(rideID)).Msg("pilot assigned")
	return nil
}

func (e *RedisEngine) PilotStatus(ctx context.Context, pilotID types.ID) (PilotStatus, error) {
	val, err := e.redis.HGet(ctx, e.statusKey(), string(pilotID)).Result()
	if errors.Is(err, redis.Nil) {
		return StatusUnknown, nil
	}
	if err != nil {
		return StatusUnknown, failure("read pilot status", err)
	}
	return PilotStatus(val), nil
}

func (e *RedisEngine) AssignedRide(ctx context.Context, pilotID types.ID) (types.ID, bool, error) {
	val, err := e.redis.Get(ctx, e.rideKey(pilotID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, failure("read pilot ride", err)
	}
	return types.ID(val), true, nil
}

// RemovePilot drops the pilot's position and status flag. The ride marker is
// left in place as history.
func (e *RedisEngine) RemovePilot(ctx context.Context, pilotID types.ID) error {
	_, err := e.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, e.geoKey(), string(pilotID))
		pipe.HDel(ctx, e.statusKey(), string(pilotID))
		return nil
	})
	metrics.RecordDispatchOp("remove_pilot", err)
	return failure("remove pilot", err)
}
