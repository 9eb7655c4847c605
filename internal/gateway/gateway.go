// Package gateway terminates WebSocket connections, binds them to the
// presence registry and routes inbound events to the relay engine.
package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/photonp05/VartaLab/internal/api/middleware"
	"github.com/photonp05/VartaLab/internal/metrics"
	"github.com/photonp05/VartaLab/internal/presence"
	"github.com/photonp05/VartaLab/internal/relay"
)

// Gateway upgrades authenticated HTTP requests to WebSocket sessions.
type Gateway struct {
	presence *presence.Registry
	relay    *relay.Engine
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// New creates a gateway.
func New(reg *presence.Registry, engine *relay.Engine, logger zerolog.Logger) *Gateway {
	return &Gateway{
		presence: reg,
		relay:    engine,
		log:      logger.With().Str("component", "gateway").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Token auth happens before the upgrade; browsers cannot set
			// custom headers on WebSocket handshakes anyway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and runs the session until the peer
// disconnects. The auth middleware has already resolved the identity;
// requests without one are rejected before any presence binding.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug().Err(err).Msg("upgrade failed")
		return
	}

	conn := newConn(user, ws, g.log)
	g.presence.Bind(user.ID, conn)
	metrics.WSConnections.Inc()
	conn.log.Info().Str("username", user.Username).Msg("connected")

	defer func() {
		g.presence.Unbind(user.ID, conn)
		conn.close()
		metrics.WSConnections.Dec()
		conn.log.Info().Str("username", user.Username).Msg("disconnected")
	}()

	go conn.writePump()
	g.readLoop(r, conn)
}

// readLoop reads frames until the connection fails or closes.
func (g *Gateway) readLoop(r *http.Request, conn *Conn) {
	ws := conn.ws
	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(timeNow().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(timeNow().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				conn.log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			conn.Push(relay.EventError, relay.ErrorEvent{
				Code:    "invalid_input",
				Message: "malformed frame",
			})
			continue
		}

		switch f.Event {
		case relay.EventSendMessage:
			g.handleSend(r, conn, f.Data)
		default:
			conn.log.Debug().Str("event", f.Event).Msg("unknown event")
		}
	}
}

// handleSend routes a send_message event to the relay engine. Failures are
// signaled to the sender's own connection only.
func (g *Gateway) handleSend(r *http.Request, conn *Conn, data json.RawMessage) {
	var req relay.SendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		conn.Push(relay.EventError, relay.ErrorEvent{
			Code:    "invalid_input",
			Message: "malformed send_message payload",
		})
		return
	}

	_, err := g.relay.Send(r.Context(), conn.user, conn, req.ReceiverID, req.Text)
	if err != nil {
		code := relay.ErrorCode(err)
		if code == "store_unavailable" || code == "internal" {
			conn.log.Error().Err(err).Int64("receiver_id", req.ReceiverID).Msg("send failed")
		}
		conn.Push(relay.EventError, relay.ErrorEvent{
			Code:    code,
			Message: errorMessage(code),
		})
	}
}

// errorMessage maps an error code to its client-facing text. Store internals
// are never echoed to the peer.
func errorMessage(code string) string {
	switch code {
	case "unauthenticated":
		return "authentication required"
	case "invalid_input":
		return "unknown receiver or invalid message text"
	case "store_unavailable":
		return "message could not be stored, try again"
	default:
		return "internal error"
	}
}
