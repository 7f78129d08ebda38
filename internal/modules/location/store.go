// README: Pilot location snapshots backed by PostgreSQL.
package location

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"supportcarr/internal/types"
)

type SnapshotStore struct {
	db *pgxpool.Pool
}

func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) AppendSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pilot_location_snapshots (pilot_id, lat, lng, available, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(snap.PilotID), snap.Position.Lat, snap.Position.Lng, snap.Available, snap.RecordedAt,
	)
	return err
}

// ListSnapshots returns the newest snapshots first.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, pilotID types.ID, limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, pilot_id, lat, lng, available, recorded_at
		FROM pilot_location_snapshots
		WHERE pilot_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`, string(pilotID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var id string
		if err := rows.Scan(&snap.ID, &id, &snap.Position.Lat, &snap.Position.Lng, &snap.Available, &snap.RecordedAt); err != nil {
			return nil, err
		}
		snap.PilotID = types.ID(id)
		out = append(out, snap)
	}
	return out, rows.Err()
}
