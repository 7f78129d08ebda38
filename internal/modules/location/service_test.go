package location

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/types"
)

type recordingSnapshots struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (r *recordingSnapshots) AppendSnapshot(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.snaps = append(r.snaps, snap)
	return nil
}

var echoPark = types.Point{Lat: 34.0782, Lng: -118.2606}

func TestUpdatePilotStoresPositionAndAvailability(t *testing.T) {
	engine := dispatch.NewMemoryEngine()
	snaps := &recordingSnapshots{}
	svc := NewService(engine, snaps)
	ctx := context.Background()

	available := true
	if err := svc.UpdatePilot(ctx, Update{PilotID: "p1", Position: echoPark, Available: &available}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Nearby(ctx, types.Point{Lat: 34.0522, Lng: -118.2437}, 15, 5)
	if err != nil || len(got) != 1 || got[0].PilotID != "p1" {
		t.Fatalf("expected p1 nearby, got %+v (%v)", got, err)
	}
	p, err := svc.Pilot(ctx, "p1")
	if err != nil || p.Status != "available" || p.AssignedRide != nil {
		t.Fatalf("unexpected pilot %+v (%v)", p, err)
	}
	if len(snaps.snaps) != 1 || snaps.snaps[0].Available == nil || !*snaps.snaps[0].Available {
		t.Fatalf("expected one snapshot, got %+v", snaps.snaps)
	}
}

func TestUpdatePilotWithoutAvailabilityKeepsFlag(t *testing.T) {
	engine := dispatch.NewMemoryEngine()
	svc := NewService(engine, nil)
	ctx := context.Background()

	if err := svc.SetAvailability(ctx, "p1", false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if err := svc.UpdatePilot(ctx, Update{PilotID: "p1", Position: echoPark}); err != nil {
		t.Fatalf("update: %v", err)
	}
	status, _ := engine.PilotStatus(ctx, "p1")
	if status != dispatch.StatusBusy {
		t.Fatalf("expected busy to survive a position update, got %q", status)
	}
}

func TestUpdatePilotRejectsBadCoordinates(t *testing.T) {
	svc := NewService(dispatch.NewMemoryEngine(), nil)
	cases := []Update{
		{PilotID: "p1", Position: types.Point{}},
		{PilotID: "p1", Position: types.Point{Lat: 34.07, Lng: 0}},
		{PilotID: "p1", Position: types.Point{Lat: 95, Lng: -118}},
		{PilotID: "p1", Position: types.Point{Lat: math.NaN(), Lng: -118}},
		{Position: echoPark},
	}
	for _, u := range cases {
		err := svc.UpdatePilot(context.Background(), u)
		var le *ride.InvalidLocationError
		if !errors.As(err, &le) {
			t.Fatalf("update %+v: expected InvalidLocationError, got %v", u, err)
		}
	}
}

func TestUpdatePilotSnapshotFailureIsNotFatal(t *testing.T) {
	svc := NewService(dispatch.NewMemoryEngine(), &recordingSnapshots{err: errors.New("db down")})
	if err := svc.UpdatePilot(context.Background(), Update{PilotID: "p1", Position: echoPark}); err != nil {
		t.Fatalf("snapshot failure should not fail the update: %v", err)
	}
}

func TestUpdatePilotEngineFailure(t *testing.T) {
	engine := dispatch.NewMemoryEngine()
	engine.SetErr(errors.New("redis down"))
	svc := NewService(engine, nil)

	err := svc.UpdatePilot(context.Background(), Update{PilotID: "p1", Position: echoPark})
	var de *dispatch.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
}

func TestPilotLookupAndRemoval(t *testing.T) {
	engine := dispatch.NewMemoryEngine()
	svc := NewService(engine, nil)
	ctx := context.Background()

	if _, err := svc.Pilot(ctx, "ghost"); !errors.Is(err, ErrUnknownPilot) {
		t.Fatalf("expected ErrUnknownPilot, got %v", err)
	}

	if err := svc.UpdatePilot(ctx, Update{PilotID: "p1", Position: echoPark}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := engine.MarkAssigned(ctx, "p1", "ride-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	p, err := svc.Pilot(ctx, "p1")
	if err != nil || p.Status != "busy" || p.AssignedRide == nil || *p.AssignedRide != "ride-1" {
		t.Fatalf("unexpected pilot %+v (%v)", p, err)
	}

	if err := svc.RemovePilot(ctx, "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ := svc.Nearby(ctx, echoPark, 15, 5)
	if len(got) != 0 {
		t.Fatalf("expected no pilots after removal, got %+v", got)
	}
}
