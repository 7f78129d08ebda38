// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"supportcarr/internal/config"
	"supportcarr/internal/http/handlers"
	"supportcarr/internal/http/middleware"
	"supportcarr/internal/modules/location"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/modules/sms"
)

type ServerDeps struct {
	Rides    *ride.Service
	Location *location.Service
	// SMS is optional; the webhook route is only registered when set.
	SMS      *sms.Service
	Dispatch config.DispatchConfig
	Logger   zerolog.Logger
}

type Server struct {
	rides    *ride.Service
	location *location.Service
	sms      *sms.Service
	dispatch config.DispatchConfig
	log      zerolog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		rides:    deps.Rides,
		location: deps.Location,
		sms:      deps.SMS,
		dispatch: deps.Dispatch,
		log:      deps.Logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.log), middleware.Recovery(s.log))

	rideHandler := handlers.NewRideHandler(s.rides)
	r.POST("/rides", rideHandler.Create)
	r.GET("/rides/:id", rideHandler.Get)
	r.POST("/rides/:id/events", rideHandler.ApplyEvent)
	r.GET("/rides/:id/events", rideHandler.History)

	pilotHandler := handlers.NewPilotHandler(s.location, s.dispatch)
	r.GET("/pilots/nearby", pilotHandler.Nearby)
	r.GET("/pilots/:id", pilotHandler.Get)
	r.DELETE("/pilots/:id", pilotHandler.Remove)
	r.PUT("/pilots/:id/location", pilotHandler.UpdateLocation)
	r.PUT("/pilots/:id/availability", pilotHandler.SetAvailability)

	if s.sms != nil {
		smsHandler := handlers.NewSMSHandler(s.sms)
		r.POST("/twilio/sms", smsHandler.Inbound)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
