// README: Ride store backed by PostgreSQL.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"supportcarr/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const rideColumns = `id, rider_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	status, status_version, bike_type, notes, rider_phone, distance_miles, price_cents, currency,
	driver_id, created_at, updated_at`

func (s *Store) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (`+rideColumns+`) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17
		)`,
		string(r.ID), string(r.RiderID),
		r.Pickup.Lat, r.Pickup.Lng, r.Dropoff.Lat, r.Dropoff.Lng,
		string(r.Status), r.StatusVersion, r.BikeType, r.Notes, r.RiderPhone,
		r.DistanceMiles, r.Price.Amount, r.Price.Currency,
		toStringPtr(r.DriverID), r.CreatedAt, r.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

func (s *Store) FindLatestByPhone(ctx context.Context, phone string) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE rider_phone = $1
		ORDER BY created_at DESC
		LIMIT 1`, phone)
	return scanRide(row)
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
			status_version = status_version + 1,
			driver_id = COALESCE($2, driver_id),
			updated_at = $3
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to), toStringPtr(driverID), at,
		string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *StatusEvent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_status_events (ride_id, from_status, to_status, event, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(e.RideID), string(e.FromStatus), string(e.ToStatus), string(e.Event), e.CreatedAt,
	)
	return err
}

// ListEvents returns a ride's history oldest first.
func (s *Store) ListEvents(ctx context.Context, rideID types.ID) ([]StatusEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ride_id, from_status, to_status, event, created_at
		FROM ride_status_events
		WHERE ride_id = $1
		ORDER BY id`, string(rideID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusEvent
	for rows.Next() {
		var e StatusEvent
		var id, from, to, ev string
		if err := rows.Scan(&e.ID, &id, &from, &to, &ev, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.RideID = types.ID(id)
		e.FromStatus, e.ToStatus, e.Event = Status(from), Status(to), Event(ev)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var id, riderID, status string
	var driverID *string
	err := row.Scan(
		&id, &riderID,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.Dropoff.Lat, &r.Dropoff.Lng,
		&status, &r.StatusVersion, &r.BikeType, &r.Notes, &r.RiderPhone,
		&r.DistanceMiles, &r.Price.Amount, &r.Price.Currency,
		&driverID, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("ride %s: %w", id, err)
	}
	r.ID = types.ID(id)
	r.RiderID = types.ID(riderID)
	r.Status = parsed
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	return &r, nil
}

func toStringPtr(id *types.ID) *string {
	if id == nil {
		return nil
	}
	v := string(*id)
	return &v
}

var _ Repository = (*Store)(nil)
