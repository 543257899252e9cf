package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vidvault/internal/domain/pipeline"
	"vidvault/internal/infrastructure/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope pushed to subscribers.
type Message struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one websocket subscriber pinned to a single channel.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	channel string
	log     zerolog.Logger
}

// Hub fans events out to websocket subscribers grouped by channel. A
// subscriber's channel is fixed at connect time from its credentials, so
// a tenant cannot subscribe into another tenant's events. Delivery is
// best effort: slow consumers are dropped, and events published while a
// subscriber is away are not replayed.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]bool
	log         zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Client]bool),
		log:         log.With().Str("component", "ws-hub").Logger(),
	}
}

// PublishProgress implements pipeline.Broadcaster.
func (h *Hub) PublishProgress(channel string, ev pipeline.ProgressEvent) {
	h.publish(channel, pipeline.EventVideoProgress, ev)
}

// PublishCompletion implements pipeline.Broadcaster.
func (h *Hub) PublishCompletion(channel string, ev pipeline.CompletionEvent) {
	h.publish(channel, pipeline.EventVideoComplete, ev)
}

func (h *Hub) publish(channel, eventType string, data any) {
	payload, err := json.Marshal(Message{
		Type:      eventType,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("type", eventType).Msg("marshal of event payload failed")
		return
	}
	metrics.RecordEvent(eventType)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.subscribers[channel] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop it rather than block the publisher.
			h.removeLocked(client)
		}
	}
}

// SubscriberCount reports the live subscribers for a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// Serve upgrades the request and registers the connection on channel.
func (h *Hub) Serve(c *gin.Context, channel string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		channel: channel,
		log:     h.log.With().Str("channel", channel).Logger(),
	}

	h.mu.Lock()
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[*Client]bool)
	}
	h.subscribers[channel][client] = true
	h.mu.Unlock()

	metrics.WSClients.Inc()
	client.log.Info().Msg("subscriber connected")

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.subscribers[client.channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.subscribers, client.channel)
	}
	close(client.send)
	metrics.WSClients.Dec()
}

// readPump discards inbound frames; the connection is push-only. It keeps
// the read side alive for pong handling and detects the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
