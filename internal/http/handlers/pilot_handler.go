// README: Pilot handlers for location, availability and nearby search.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportcarr/internal/config"
	"supportcarr/internal/log"
	"supportcarr/internal/modules/location"
	"supportcarr/internal/types"
)

const maxNearbyLimit = 50

type PilotHandler struct {
	location *location.Service
	defaults config.DispatchConfig
	log      zerolog.Logger
}

func NewPilotHandler(svc *location.Service, defaults config.DispatchConfig) *PilotHandler {
	return &PilotHandler{location: svc, defaults: defaults, log: log.WithComponent("http.pilots")}
}

type locationReq struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Available *bool    `json:"available"`
}

func (h *PilotHandler) UpdateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	err := h.location.UpdatePilot(c.Request.Context(), location.Update{
		PilotID:   types.ID(c.Param("id")),
		Position:  types.Point{Lat: *req.Lat, Lng: *req.Lng},
		Available: req.Available,
	})
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

type availabilityReq struct {
	Available *bool `json:"available"`
}

func (h *PilotHandler) SetAvailability(c *gin.Context) {
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		writeError(c, http.StatusBadRequest, "available is required")
		return
	}
	if err := h.location.SetAvailability(c.Request.Context(), types.ID(c.Param("id")), *req.Available); err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

type pilotResp struct {
	ID           types.ID  `json:"id"`
	Status       string    `json:"status"`
	AssignedRide *types.ID `json:"assigned_ride"`
}

func (h *PilotHandler) Get(c *gin.Context) {
	p, err := h.location.Pilot(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, pilotResp{ID: p.ID, Status: p.Status, AssignedRide: p.AssignedRide})
}

func (h *PilotHandler) Remove(c *gin.Context) {
	if err := h.location.RemovePilot(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type candidateResp struct {
	PilotID        types.ID `json:"pilot_id"`
	DistanceMeters *float64 `json:"distance_meters"`
}

func (h *PilotHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	radius := h.defaults.RadiusMiles
	if v := c.Query("radius_miles"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "radius_miles must be a positive number")
			return
		}
		radius = r
	}
	limit := h.defaults.CandidateLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxNearbyLimit {
			writeError(c, http.StatusBadRequest, "limit must be between 0 and "+strconv.Itoa(maxNearbyLimit))
			return
		}
		limit = n
	}

	candidates, err := h.location.Nearby(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius, limit)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}
	out := make([]candidateResp, len(candidates))
	for i, cand := range candidates {
		out[i] = candidateResp{PilotID: cand.PilotID, DistanceMeters: cand.DistanceMeters}
	}
	writeJSON(c, http.StatusOK, map[string]any{"pilots": out})
}
