package models

import "time"

// ConversationEntry is a message joined with its sender's profile, as
// returned by the store's conversation query.
type ConversationEntry struct {
	Text              string
	CreatedAt         time.Time
	SenderID          int64
	SenderUsername    string
	SenderDisplayName string
}
