/*
Package chat is the websocket transport of the relay.

This file defines the Client struct, representing an active WebSocket connection. It runs the
connection's read and write loops and hands inbound frames to the Hub.
*/
package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// DefaultPongWait is how long a silent connection survives.
	DefaultPongWait = 25 * time.Second

	// DefaultPingPeriod is how often the server pings. Must be less than the pong wait.
	DefaultPingPeriod = 20 * time.Second

	// DefaultMaxFrameBytes bounds one inbound frame; a file frame carries up to
	// a 7,000,000-character data URI plus its envelope.
	DefaultMaxFrameBytes = 8_000_000

	// size of the per-client outbound queue.
	sendBuffer = 256
)

// ClientOptions tunes a connection's limits and heartbeat. Zero values pick
// the defaults.
type ClientOptions struct {
	MaxFrameBytes int64
	PongWait      time.Duration
	PingPeriod    time.Duration
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.MaxFrameBytes <= 0 {
		o.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if o.PongWait <= 0 {
		o.PongWait = DefaultPongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 4) / 5
	}
	return o
}

// Client struct represents an active WebSocket connection.
type Client struct {
	// ID names the session in the relay engine.
	ID relay.ConnID

	hub *Hub

	// underlying WebSocket connection object. Nil in tests that drive the hub directly.
	conn *websocket.Conn

	opts ClientOptions

	// a buffered channel used to queue frames waiting to be sent to the client.
	send      chan []byte
	closeOnce sync.Once

	// mu guards logger, which gains the room id after join.
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(hub *Hub, wsConn *websocket.Conn, id relay.ConnID, opts ClientOptions) *Client {
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   wsConn,
		opts:   opts.withDefaults(),
		send:   make(chan []byte, sendBuffer),
		logger: logx.Logger().With().Str("conn_id", string(id)).Logger(),
	}
}

// bind adds the joined room to the client's log context.
func (c *Client) bind(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger = c.logger.With().Str("room_id", roomID).Logger()
}

func (c *Client) log() *zerolog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.logger
	return &l
}

// enqueue queues data without blocking. It reports false when the queue is
// full and the frame was dropped. The caller holds the hub's read lock.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		c.log().Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return false
	}
}

// closeSend closes the outbound queue. The caller holds the hub's write lock.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ReadPump handles reading frames from the WebSocket connection.
// It keeps the heartbeat deadline fresh, hands frames to the hub in order, and
// unregisters the client when the connection ends.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(c.opts.MaxFrameBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait)); err != nil {
		c.log().Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.log().Debug().Int("message_type", messageType).Msg("Ignoring non-text frame")
			continue
		}

		c.hub.Handle(c, frame)
	}
}

// cleanupOnDisconnect runs when ReadPump ends.
func (c *Client) cleanupOnDisconnect() {
	c.log().Debug().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.log().Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection
// and sends the periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.log().Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame, or a close frame once the queue
// is closed. Returns false when the WritePump loop should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log().Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.log().Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.log().Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a WebSocket Ping to keep the heartbeat going.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log().Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.log().Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
