package vartalab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Wire event names, matching the server.
const (
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventError          = "error"
)

// Event is one frame received from the server. Data decodes into
// IncomingMessage, SentConfirmation or ServerError depending on Event.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// IncomingMessage is the payload of a receive_message event.
type IncomingMessage struct {
	Text              string    `json:"text"`
	SenderID          int64     `json:"sender_id"`
	SenderUsername    string    `json:"sender_username"`
	SenderDisplayName string    `json:"sender_display_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// SentConfirmation is the payload of a message_sent event.
type SentConfirmation struct {
	Text       string    `json:"text"`
	ReceiverID int64     `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ServerError is the payload of an error event.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Session is a live WebSocket connection to the server. Events arrive on the
// Events channel until the connection closes, after which the channel is
// closed.
type Session struct {
	ws     *websocket.Conn
	Events chan Event
}

// Connect opens a WebSocket session using the current login token.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	if c.token == "" {
		return nil, errors.New("vartalab: not logged in")
	}

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws?token=" + c.token
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("vartalab: dial failed: HTTP %d", resp.StatusCode)
		}
		return nil, err
	}

	s := &Session{ws: ws, Events: make(chan Event, 16)}
	go s.readLoop()
	return s, nil
}

func (s *Session) readLoop() {
	defer close(s.Events)
	for {
		var e Event
		if err := s.ws.ReadJSON(&e); err != nil {
			return
		}
		s.Events <- e
	}
}

// Send submits one message to the given receiver. Delivery feedback arrives
// asynchronously as a message_sent or error event.
func (s *Session) Send(receiverID int64, text string) error {
	payload := map[string]any{"receiver_id": receiverID, "text": text}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.ws.WriteJSON(Event{Event: EventSendMessage, Data: data})
}

// Close shuts the session down.
func (s *Session) Close() error {
	return s.ws.Close()
}
