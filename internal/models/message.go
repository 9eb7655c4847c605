package models

import "time"

// Message is one stored chat message. ID and CreatedAt are assigned by the
// store at insert time; rows are immutable and never deleted.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
