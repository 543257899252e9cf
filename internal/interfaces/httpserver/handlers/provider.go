package handlers

import (
	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/interfaces/ws"
)

// Provider wires HTTP handlers.
type Provider struct {
	Video  *VideoHandler
	Stream *StreamHandler
	Events *EventsHandler
}

func NewProvider(cfg *config.Config, service *asset.Service, hub *ws.Hub, log zerolog.Logger) *Provider {
	return &Provider{
		Video:  NewVideoHandler(cfg, service, log),
		Stream: NewStreamHandler(cfg, service, log),
		Events: NewEventsHandler(hub, log),
	}
}
