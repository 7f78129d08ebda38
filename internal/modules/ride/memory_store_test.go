package ride

import (
	"context"
	"errors"
	"testing"
	"time"

	"supportcarr/internal/types"
)

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	r := NewRide("rider-1", downtownLA, silverLake, time.Now())
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	pilot := types.ID("pilot-1")
	r.DriverID = &pilot
	got, _ := store.Get(ctx, r.ID)
	if got.DriverID != nil {
		t.Fatal("store should not alias the caller's ride")
	}

	got.Status = StatusCancelled
	again, _ := store.Get(ctx, r.ID)
	if again.Status != StatusRequested {
		t.Fatal("mutating a returned ride leaked into the store")
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	r := NewRide("rider-1", downtownLA, silverLake, time.Now())

	if ok, _ := store.UpdateStatus(ctx, r.ID, StatusRequested, StatusCancelled, 0, nil, time.Now()); ok {
		t.Fatal("update of a missing ride should not apply")
	}
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, r); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("create twice: expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryStoreUpdateStatusChecksStatusAndVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	r := NewRide("rider-1", downtownLA, silverLake, time.Now())
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	pilot := types.ID("pilot-1")
	if ok, err := store.UpdateStatus(ctx, r.ID, StatusRequested, StatusAccepted, 0, &pilot, time.Now()); err != nil || !ok {
		t.Fatalf("accept: ok=%v err=%v", ok, err)
	}

	tests := []struct {
		name    string
		from    Status
		version int
	}{
		{name: "stale version", from: StatusAccepted, version: 0},
		{name: "stale status", from: StatusRequested, version: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ok, _ := store.UpdateStatus(ctx, r.ID, tt.from, StatusCancelled, tt.version, nil, time.Now()); ok {
				t.Fatal("expected update to be refused")
			}
		})
	}

	if ok, _ := store.UpdateStatus(ctx, r.ID, StatusAccepted, StatusEnRoute, 1, nil, time.Now()); !ok {
		t.Fatal("expected current version to apply")
	}
	got, _ := store.Get(ctx, r.ID)
	if got.Status != StatusEnRoute || got.StatusVersion != 2 || got.DriverID == nil || *got.DriverID != pilot {
		t.Fatalf("unexpected ride %+v", got)
	}
}
