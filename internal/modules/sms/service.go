// README: Inbound SMS service: riders text in to complete or cancel their latest ride.
package sms

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"supportcarr/internal/log"
	"supportcarr/internal/modules/ride"
)

const (
	ReplyCompleted = "Thanks! Your rescue is marked complete."
	ReplyCancelled = "Your rescue has been cancelled."
)

var ErrBadPayload = errors.New("invalid form payload")

type Rides interface {
	FindByPhone(ctx context.Context, phone string) (*ride.Ride, error)
	Apply(ctx context.Context, cmd ride.EventCommand) (*ride.Ride, error)
}

type Config struct {
	AuthToken  string
	WebhookURL string
}

type Service struct {
	cfg   Config
	rides Rides
	log   zerolog.Logger
}

func NewService(cfg Config, rides Rides) *Service {
	return &Service{cfg: cfg, rides: rides, log: log.WithComponent("sms")}
}

type Message struct {
	From string
	Body string
}

// ParseMessage decodes the form body. Both From and Body must be present.
func ParseMessage(body []byte) (Message, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Message{}, ErrBadPayload
	}
	if !values.Has("From") || !values.Has("Body") {
		return Message{}, ErrBadPayload
	}
	return Message{From: values.Get("From"), Body: values.Get("Body")}, nil
}

// EventFor maps a message text to a ride event. Any mention of CANCEL
// cancels; everything else completes.
func EventFor(text string) ride.Event {
	if strings.Contains(strings.ToUpper(text), "CANCEL") {
		return ride.EventCancel
	}
	return ride.EventComplete
}

// HandleInbound verifies, decodes and applies one inbound message and returns
// the reply text for the rider.
func (s *Service) HandleInbound(ctx context.Context, signature string, body []byte) (string, error) {
	if signature == "" || !VerifySignature(s.cfg.AuthToken, s.cfg.WebhookURL, body, signature) {
		return "", ride.ErrUnauthorized
	}
	msg, err := ParseMessage(body)
	if err != nil {
		return "", err
	}

	r, err := s.rides.FindByPhone(ctx, msg.From)
	if err != nil {
		return "", err
	}
	updated, err := s.rides.Apply(ctx, ride.EventCommand{RideID: r.ID, Event: EventFor(msg.Body)})
	if err != nil {
		return "", err
	}

	logger := log.FromContext(ctx, s.log)
	logger.Info().
		Str("ride_id", string(updated.ID)).
		Str("status", string(updated.Status)).
		Msg("ride updated by sms")
	if updated.Status == ride.StatusCompleted {
		return ReplyCompleted, nil
	}
	return ReplyCancelled, nil
}
