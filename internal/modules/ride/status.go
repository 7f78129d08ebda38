// README: Ride status machine: legal status moves and the event table that drives them.
package ride

type Status string

const (
	StatusRequested            Status = "requested"
	StatusAccepted             Status = "accepted"
	StatusEnRoute              Status = "en_route"
	StatusArrived              Status = "arrived"
	StatusInTransit            Status = "in_transit"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
	StatusCancelledRiderNoShow Status = "cancelled_rider_noshow"
	StatusCancelledSafety      Status = "cancelled_safety"
	StatusRejectedGeofence     Status = "rejected_geofence"
)

var allStatuses = []Status{
	StatusRequested, StatusAccepted, StatusEnRoute, StatusArrived, StatusInTransit,
	StatusCompleted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety, StatusRejectedGeofence,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety, StatusRejectedGeofence:
		return true
	}
	return false
}

// ParseStatus accepts the canonical codes only. A bad code is reported as an
// InvalidTransitionError with the raw code in From and an empty To.
func ParseStatus(code string) (Status, error) {
	for _, s := range allStatuses {
		if string(s) == code {
			return s, nil
		}
	}
	return "", &InvalidTransitionError{From: Status(code)}
}

type Event string

const (
	EventAccept         Event = "accept"
	EventDepart         Event = "depart"
	EventArrive         Event = "arrive"
	EventBeginTransit   Event = "begin_transit"
	EventComplete       Event = "complete"
	EventCancel         Event = "cancel"
	EventCancelNoShow   Event = "cancel_noshow"
	EventCancelSafety   Event = "cancel_safety"
	EventRejectGeofence Event = "reject_geofence"
)

func ParseEvent(code string) (Event, bool) {
	switch e := Event(code); e {
	case EventAccept, EventDepart, EventArrive, EventBeginTransit, EventComplete,
		EventCancel, EventCancelNoShow, EventCancelSafety, EventRejectGeofence:
		return e, true
	}
	return "", false
}

// AllowedTransitions is the ride flow as code. Terminal states have no entry.
var AllowedTransitions = map[Status][]Status{
	StatusRequested: {StatusAccepted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety, StatusRejectedGeofence},
	StatusAccepted:  {StatusEnRoute, StatusArrived, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety},
	StatusEnRoute:   {StatusArrived, StatusInTransit, StatusCompleted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety},
	StatusArrived:   {StatusInTransit, StatusCompleted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety},
	StatusInTransit: {StatusCompleted, StatusCancelled, StatusCancelledRiderNoShow, StatusCancelledSafety},
}

var eventTargets = map[Status]map[Event]Status{
	StatusRequested: {
		EventAccept:         StatusAccepted,
		EventCancel:         StatusCancelled,
		EventCancelNoShow:   StatusCancelledRiderNoShow,
		EventCancelSafety:   StatusCancelledSafety,
		EventRejectGeofence: StatusRejectedGeofence,
	},
	StatusAccepted: {
		EventDepart:       StatusEnRoute,
		EventArrive:       StatusArrived,
		EventCancel:       StatusCancelled,
		EventCancelNoShow: StatusCancelledRiderNoShow,
		EventCancelSafety: StatusCancelledSafety,
	},
	StatusEnRoute: {
		EventArrive:       StatusArrived,
		EventBeginTransit: StatusInTransit,
		EventComplete:     StatusCompleted,
		EventCancel:       StatusCancelled,
		EventCancelNoShow: StatusCancelledRiderNoShow,
		EventCancelSafety: StatusCancelledSafety,
	},
	StatusArrived: {
		EventBeginTransit: StatusInTransit,
		EventComplete:     StatusCompleted,
		EventCancel:       StatusCancelled,
		EventCancelNoShow: StatusCancelledRiderNoShow,
		EventCancelSafety: StatusCancelledSafety,
	},
	StatusInTransit: {
		EventComplete:     StatusCompleted,
		EventCancel:       StatusCancelled,
		EventCancelNoShow: StatusCancelledRiderNoShow,
		EventCancelSafety: StatusCancelledSafety,
	},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// ApplyEvent returns the status reached by applying e to current.
func ApplyEvent(current Status, e Event) (Status, error) {
	next, ok := eventTargets[current][e]
	if !ok {
		return "", &InvalidTransitionError{From: current}
	}
	if err := ValidateTransition(current, next); err != nil {
		return "", err
	}
	return next, nil
}
