// README: Inbound SMS webhook handler; replies with plain text.
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supportcarr/internal/log"
	"supportcarr/internal/modules/sms"
)

const (
	signatureHeader = "X-Twilio-Signature"
	maxWebhookBody  = 64 << 10
)

type SMSHandler struct {
	sms *sms.Service
	log zerolog.Logger
}

func NewSMSHandler(svc *sms.Service) *SMSHandler {
	return &SMSHandler{sms: svc, log: log.WithComponent("http.sms")}
}

func (h *SMSHandler) Inbound(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}
	reply, err := h.sms.HandleInbound(c.Request.Context(), c.GetHeader(signatureHeader), body)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger := log.FromContext(c.Request.Context(), h.log)
			logger.Error().Err(err).Msg("sms webhook failed")
			c.String(status, "internal error")
			return
		}
		c.String(status, err.Error())
		return
	}
	c.String(http.StatusOK, reply)
}
