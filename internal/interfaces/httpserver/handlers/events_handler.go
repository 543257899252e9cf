package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/interfaces/httpserver/responses"
	"vidvault/internal/interfaces/ws"
	"vidvault/internal/utils/platformerrors"
)

// EventsHandler upgrades clients onto the progress event stream. The
// channel is derived from the caller's credentials, never from request
// input, so subscribers only ever see their own tenant's events.
type EventsHandler struct {
	hub *ws.Hub
	log zerolog.Logger
}

func NewEventsHandler(hub *ws.Hub, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log.With().Str("component", "events-handler").Logger(),
	}
}

// Subscribe attaches the caller to its tenant's event channel.
func (h *EventsHandler) Subscribe(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "58d0b6f2-3e94-4a17-8c5d-a1f7e9c30b46")
		return
	}
	h.hub.Serve(c, principal.Channel())
}
