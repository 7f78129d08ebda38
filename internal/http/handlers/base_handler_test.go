package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/modules/location"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/modules/sms"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid transition", err: &ride.InvalidTransitionError{From: ride.StatusCompleted}, want: http.StatusBadRequest},
		{name: "invalid location", err: &ride.InvalidLocationError{Reason: "latitude out of range"}, want: http.StatusBadRequest},
		{name: "pilot limit", err: &ride.PilotLimitError{DistanceMiles: 12}, want: http.StatusBadRequest},
		{name: "bad payload", err: sms.ErrBadPayload, want: http.StatusBadRequest},
		{name: "ride not found", err: ride.ErrNotFound, want: http.StatusNotFound},
		{name: "pilot not found", err: location.ErrUnknownPilot, want: http.StatusNotFound},
		{name: "duplicate ride", err: ride.ErrAlreadyExists, want: http.StatusConflict},
		{name: "concurrent status change", err: ride.ErrConflict, want: http.StatusConflict},
		{name: "wrapped conflict", err: fmt.Errorf("apply: %w", ride.ErrConflict), want: http.StatusConflict},
		{name: "unauthorized", err: ride.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "dispatch", err: &dispatch.Error{Op: "find nearby pilots", Msg: "find nearby pilots: timeout"}, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
