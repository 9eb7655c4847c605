package relay

import "time"

// Wire event names. Stable: clients depend on them.
const (
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventError          = "error"
)

// SendRequest is the payload of a send_message event.
type SendRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Text       string `json:"text"`
}

// InboundMessage is the payload of a receive_message event, pushed to every
// live connection of the receiver.
type InboundMessage struct {
	Text              string    `json:"text"`
	SenderID          int64     `json:"sender_id"`
	SenderUsername    string    `json:"sender_username"`
	SenderDisplayName string    `json:"sender_display_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// SendConfirmation is the payload of a message_sent event, pushed to the
// originating connection only.
type SendConfirmation struct {
	Text       string    `json:"text"`
	ReceiverID int64     `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrorEvent is the payload of an error event, emitted locally to the
// connection whose send failed.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
