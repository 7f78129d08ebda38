package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDispatchOp(t *testing.T) {
	okBefore := testutil.ToFloat64(DispatchOperationsTotal.WithLabelValues("probe", "ok"))
	errBefore := testutil.ToFloat64(DispatchOperationsTotal.WithLabelValues("probe", "error"))

	RecordDispatchOp("probe", nil)
	RecordDispatchOp("probe", errors.New("boom"))
	RecordDispatchOp("probe", nil)

	if got := testutil.ToFloat64(DispatchOperationsTotal.WithLabelValues("probe", "ok")) - okBefore; got != 2 {
		t.Fatalf("expected 2 ok ops, got %v", got)
	}
	if got := testutil.ToFloat64(DispatchOperationsTotal.WithLabelValues("probe", "error")) - errBefore; got != 1 {
		t.Fatalf("expected 1 failed op, got %v", got)
	}
}

func TestRecordRideRequestDefaultsOutcome(t *testing.T) {
	before := testutil.ToFloat64(RideRequestsTotal.WithLabelValues("unknown"))
	RecordRideRequest("")
	if got := testutil.ToFloat64(RideRequestsTotal.WithLabelValues("unknown")) - before; got != 1 {
		t.Fatalf("expected unknown outcome increment, got %v", got)
	}
}
