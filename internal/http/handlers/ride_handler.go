// README: Ride handlers for request, status lookup and status events.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportcarr/internal/log"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/types"
)

type RideHandler struct {
	rides *ride.Service
	log   zerolog.Logger
}

func NewRideHandler(svc *ride.Service) *RideHandler {
	return &RideHandler{rides: svc, log: log.WithComponent("http.rides")}
}

type requestRideReq struct {
	RiderID    string    `json:"rider_id"`
	Pickup     *pointReq `json:"pickup"`
	Dropoff    *pointReq `json:"dropoff"`
	BikeType   *string   `json:"bike_type"`
	Notes      *string   `json:"notes"`
	RiderPhone *string   `json:"rider_phone"`
}

type rideResp struct {
	ID            types.ID  `json:"id"`
	Status        string    `json:"status"`
	DriverID      *types.ID `json:"driver_id"`
	DistanceMiles float64   `json:"distance_miles"`
	PriceCents    int64     `json:"price_cents"`
}

func toRideResp(r *ride.Ride) rideResp {
	return rideResp{
		ID:            r.ID,
		Status:        r.Status.String(),
		DriverID:      r.DriverID,
		DistanceMiles: r.DistanceMiles,
		PriceCents:    r.Price.Amount,
	}
}

func (h *RideHandler) Create(c *gin.Context) {
	var req requestRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RiderID == "" || req.Pickup == nil || req.Dropoff == nil {
		writeError(c, http.StatusBadRequest, "rider_id, pickup and dropoff are required")
		return
	}
	r, err := h.rides.Request(c.Request.Context(), ride.RequestCommand{
		RiderID:    types.ID(req.RiderID),
		Pickup:     types.Point{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		Dropoff:    types.Point{Lat: req.Dropoff.Lat, Lng: req.Dropoff.Lng},
		BikeType:   req.BikeType,
		Notes:      req.Notes,
		RiderPhone: req.RiderPhone,
	})
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, toRideResp(r))
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, toRideResp(r))
}

type eventReq struct {
	Event string `json:"event"`
}

func (h *RideHandler) ApplyEvent(c *gin.Context) {
	var req eventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ev, ok := ride.ParseEvent(req.Event)
	if !ok {
		writeError(c, http.StatusBadRequest, "unknown event: "+req.Event)
		return
	}
	r, err := h.rides.Apply(c.Request.Context(), ride.EventCommand{RideID: types.ID(c.Param("id")), Event: ev})
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, toRideResp(r))
}

type statusEventResp struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *RideHandler) History(c *gin.Context) {
	events, err := h.rides.History(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	resp := make([]statusEventResp, 0, len(events))
	for _, e := range events {
		resp = append(resp, statusEventResp{
			From:      e.FromStatus.String(),
			To:        e.ToStatus.String(),
			Event:     string(e.Event),
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"events": resp})
}
