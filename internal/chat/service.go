// Package chat exposes the read-side query surface consumed by the HTTP
// presentation layer: user listing, user search and conversation retrieval.
package chat

import (
	"context"
	"time"

	"github.com/photonp05/VartaLab/internal/store"
)

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ConversationMessage is one message as seen by a requesting user.
type ConversationMessage struct {
	Text              string    `json:"text"`
	CreatedAt         time.Time `json:"created_at"`
	SenderUsername    string    `json:"sender_username"`
	SenderDisplayName string    `json:"sender_display_name"`
	IsOwn             bool      `json:"is_own"`
}

// Service answers read queries against the data store.
type Service struct {
	store store.DataStore
}

// NewService creates a query service.
func NewService(ds store.DataStore) *Service {
	return &Service{store: ds}
}

// ListOtherUsers returns every user except the requester.
func (s *Service) ListOtherUsers(ctx context.Context, requesterID int64) ([]UserSummary, error) {
	users, err := s.store.ListUsersExcept(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, len(users))
	for i, u := range users {
		out[i] = UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
	}
	return out, nil
}

// FindUser looks up a user by exact username, excluding the requester.
// Returns nil when there is no match.
func (s *Service) FindUser(ctx context.Context, username string, excludingID int64) (*UserSummary, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == excludingID {
		return nil, nil
	}
	return &UserSummary{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName}, nil
}

// GetConversation returns all messages between the requester and the other
// user, oldest first, with IsOwn set on the requester's own messages.
func (s *Service) GetConversation(ctx context.Context, requesterID, otherID int64) ([]ConversationMessage, error) {
	entries, err := s.store.Conversation(ctx, requesterID, otherID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationMessage, len(entries))
	for i, e := range entries {
		out[i] = ConversationMessage{
			Text:              e.Text,
			CreatedAt:         e.CreatedAt,
			SenderUsername:    e.SenderUsername,
			SenderDisplayName: e.SenderDisplayName,
			IsOwn:             e.SenderID == requesterID,
		}
	}
	return out, nil
}
