package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/photonp05/VartaLab/internal/models"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = 54 * time.Second

	// Maximum inbound frame size.
	maxFrameBytes = 8192

	// Outbound queue depth per connection.
	sendQueueSize = 64
)

// timeNow is the clock, overridable in tests.
var timeNow = time.Now

// frame is the wire envelope for both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outFrame is an outbound envelope before serialization.
type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Conn is one live WebSocket session for an authenticated user. It
// implements presence.Session. A single user may hold several connections,
// each with its own ID and send queue.
type Conn struct {
	id   string
	user *models.User
	ws   *websocket.Conn
	send chan outFrame
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

func newConn(user *models.User, ws *websocket.Conn, logger zerolog.Logger) *Conn {
	id := ulid.Make().String()
	return &Conn{
		id:   id,
		user: user,
		ws:   ws,
		send: make(chan outFrame, sendQueueSize),
		done: make(chan struct{}),
		log: logger.With().
			Str("conn_id", id).
			Int64("user_id", user.ID).
			Logger(),
	}
}

// ID returns the connection handle ID.
func (c *Conn) ID() string { return c.id }

// UserID returns the bound user's ID.
func (c *Conn) UserID() int64 { return c.user.ID }

// Push queues an event for delivery. It never blocks: when the send queue is
// full or the connection is shutting down the event is dropped and Push
// returns false. The writer goroutine owns the socket; Push only touches the
// queue.
func (c *Conn) Push(event string, payload any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- outFrame{Event: event, Data: payload}:
		return true
	default:
		return false
	}
}

// close shuts the connection down exactly once.
func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump is the single writer for the socket: it drains the send queue
// and keeps the connection alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case f := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
