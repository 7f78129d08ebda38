// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportcarr/internal/log"
	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/modules/location"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/modules/sms"
)

type errorResponse struct {
	Error string `json:"error"`
}

type pointReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		transitionErr *ride.InvalidTransitionError
		locationErr   *ride.InvalidLocationError
		limitErr      *ride.PilotLimitError
		dispatchErr   *dispatch.Error
	)
	switch {
	case errors.As(err, &transitionErr), errors.As(err, &locationErr), errors.As(err, &limitErr),
		errors.Is(err, ride.ErrBadRequest), errors.Is(err, sms.ErrBadPayload):
		return http.StatusBadRequest
	case errors.Is(err, ride.ErrNotFound), errors.Is(err, location.ErrUnknownPilot):
		return http.StatusNotFound
	case errors.Is(err, ride.ErrAlreadyExists), errors.Is(err, ride.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ride.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &dispatchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(c *gin.Context, logger zerolog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		l := log.FromContext(c.Request.Context(), logger)
		l.Error().Err(err).Int("status", status).Msg("request failed")
	}
	if status == http.StatusInternalServerError {
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}
