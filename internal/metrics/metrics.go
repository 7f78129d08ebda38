// README: Prometheus counters for ride requests, status transitions and dispatch operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportcarr_ride_requests_total",
		Help: "Ride requests by outcome (assigned, unassigned, rejected, failed)",
	}, []string{"outcome"})

	RideTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportcarr_ride_transitions_total",
		Help: "Applied ride status transitions",
	}, []string{"from", "to"})

	DispatchOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportcarr_dispatch_operations_total",
		Help: "Dispatch index operations by result",
	}, []string{"op", "outcome"})
)

const (
	OutcomeAssigned   = "assigned"
	OutcomeUnassigned = "unassigned"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

func RecordRideRequest(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	RideRequestsTotal.WithLabelValues(outcome).Inc()
}

func RecordTransition(from, to string) {
	RideTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordDispatchOp counts one index call; a nil err is a success.
func RecordDispatchOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DispatchOperationsTotal.WithLabelValues(op, outcome).Inc()
}
