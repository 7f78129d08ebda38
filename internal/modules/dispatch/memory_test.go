package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportcarr/internal/types"
)

func TestMemoryEngine_FindNearby(t *testing.T) {
	engine := NewMemoryEngine()
	ctx := context.Background()

	require.NoError(t, engine.StorePilotLocation(ctx, "far", pasadena))
	require.NoError(t, engine.StorePilotLocation(ctx, "near", echoPark))
	require.NoError(t, engine.StorePilotLocation(ctx, "out", sanDiego))

	got, err := engine.FindNearbyPilots(ctx, downtownLA, 15, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.ID("near"), got[0].PilotID)
	assert.Equal(t, types.ID("far"), got[1].PilotID)
	assert.InDelta(t, 3300, *got[0].DistanceMeters, 300)

	limited, err := engine.FindNearbyPilots(ctx, downtownLA, 15, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := engine.FindNearbyPilots(ctx, downtownLA, 15, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryEngine_AssignAndRemove(t *testing.T) {
	engine := NewMemoryEngine()
	ctx := context.Background()

	require.NoError(t, engine.StorePilotLocation(ctx, "p1", echoPark))
	require.NoError(t, engine.SetPilotAvailable(ctx, "p1", true))
	require.NoError(t, engine.MarkAssigned(ctx, "p1", "ride-1"))
	require.NoError(t, engine.MarkAssigned(ctx, "p1", "ride-2"))

	status, _ := engine.PilotStatus(ctx, "p1")
	assert.Equal(t, StatusBusy, status)
	ride, ok, _ := engine.AssignedRide(ctx, "p1")
	assert.True(t, ok)
	assert.Equal(t, types.ID("ride-2"), ride)

	require.NoError(t, engine.RemovePilot(ctx, "p1"))
	got, _ := engine.FindNearbyPilots(ctx, downtownLA, 15, 5)
	assert.Empty(t, got)
}

func TestMemoryEngine_InjectedFailure(t *testing.T) {
	engine := NewMemoryEngine()
	engine.SetErr(errors.New("boom"))

	_, err := engine.FindNearbyPilots(context.Background(), downtownLA, 15, 1)
	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "find nearby pilots", de.Op)
	assert.Equal(t, "dispatch error: find nearby pilots: boom", err.Error())
}

func TestMemoryEngine_SetErrWhileInUse(t *testing.T) {
	engine := NewMemoryEngine()
	ctx := context.Background()
	require.NoError(t, engine.StorePilotLocation(ctx, "p1", downtownLA))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = engine.FindNearbyPilots(ctx, downtownLA, 15, 1)
			_ = engine.SetPilotAvailable(ctx, "p1", i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			engine.SetErr(errors.New("flaky"))
			engine.SetErr(nil)
		}
	}()
	wg.Wait()

	got, err := engine.FindNearbyPilots(ctx, downtownLA, 15, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
