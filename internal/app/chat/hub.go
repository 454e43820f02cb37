/*
Package chat is the websocket transport of the relay.

This file defines the Hub, which tracks every open client, feeds inbound frames
to the relay engine and routes the resulting envelopes to the right clients'
send queues.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
)

// Hub connects websocket clients to the relay engine.
type Hub struct {
	engine *relay.Engine

	// metrics may be nil.
	metrics *metrics.Metrics

	// mu guards clients. Delivery holds the read lock while enqueueing so a
	// client's send channel is never closed underneath it.
	mu      sync.RWMutex
	clients map[relay.ConnID]*Client
	closed  bool

	logger zerolog.Logger
}

// NewHub returns a hub driving engine.
func NewHub(engine *relay.Engine) *Hub {
	return &Hub{
		engine:  engine,
		clients: make(map[relay.ConnID]*Client),
		logger:  logx.Component("Hub"),
	}
}

// SetMetrics attaches collectors. Call before serving.
func (h *Hub) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// Engine returns the relay engine behind the hub.
func (h *Hub) Engine() *relay.Engine {
	return h.engine
}

// Register starts tracking c. It returns false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c.ID] = c
	h.engine.Connect(c.ID)

	h.logger.Debug().Str("conn_id", string(c.ID)).Int("open_connections", len(h.clients)).Msg("Client registered.")
	return true
}

// Unregister tears down c's session and tells its room. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.ID]
	if ok && current == c {
		delete(h.clients, c.ID)
		c.closeSend()
	}
	h.mu.Unlock()

	if !ok || current != c {
		return
	}

	h.Deliver(h.engine.Disconnect(c.ID))

	h.logger.Debug().Str("conn_id", string(c.ID)).Msg("Client unregistered.")
}

// Deliver encodes each envelope and queues it on its recipient. Recipients
// that have already gone are skipped.
func (h *Hub) Deliver(envs []relay.Envelope) {
	if len(envs) == 0 {
		return
	}

	type messageKey struct {
		sender relay.ConnID
		id     string
	}

	// A message fans out to every recipient; encode its (possibly large)
	// payload once.
	messages := make(map[messageKey][]byte)
	frames := make([][]byte, len(envs))

	for i, env := range envs {
		msg, isMessage := env.Event.Payload.(relay.Message)
		if isMessage {
			if data, ok := messages[messageKey{msg.SenderID, msg.ID}]; ok {
				frames[i] = data
				continue
			}
		}

		data, err := h.encode(env.Event)
		if err != nil {
			h.logger.Error().Err(err).Str("event", string(env.Event.Type)).Msg("Dropping event that cannot be encoded.")
			continue
		}

		frames[i] = data
		if isMessage {
			messages[messageKey{msg.SenderID, msg.ID}] = data
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for i, env := range envs {
		if frames[i] == nil {
			continue
		}

		c, ok := h.clients[env.To]
		if !ok {
			continue
		}

		if !c.enqueue(frames[i]) {
			h.metrics.Dropped()
		}
	}
}

func (h *Hub) encode(ev relay.Event) ([]byte, error) {
	frame, err := encodeEvent(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame)
}

// sendFrame queues a frame built by the hub itself (errors, advisories) to c.
func (h *Hub) sendFrame(c *Client, frame OutboundFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(frame.Type)).Msg("Failed to marshal frame.")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if current, ok := h.clients[c.ID]; !ok || current != c {
		return
	}

	if !c.enqueue(data) {
		h.metrics.Dropped()
	}
}

// ActiveRooms implements metrics.Source.
func (h *Hub) ActiveRooms() int {
	return h.engine.Rooms().Len()
}

// BoundMembers implements metrics.Source.
func (h *Hub) BoundMembers() int {
	_, bound := h.engine.Sessions()
	return bound
}

// OpenConnections implements metrics.Source.
func (h *Hub) OpenConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Shutdown closes every client's send queue, which makes its write pump send
// a close frame and hang up. New registrations are refused afterwards.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}

	h.logger.Info().Int("closed_connections", len(clients)).Msg("Hub shutdown complete.")
}
