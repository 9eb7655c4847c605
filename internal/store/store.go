package store

import (
	"context"

	"github.com/photonp05/VartaLab/internal/models"
)

// DataStore defines the interface for durable storage of users and messages.
// Both PostgresStore and SQLiteStore implement this interface.
//
// Lookup methods return (nil, nil) when no row matches; absence is not an
// error. AppendMessage assigns the message ID and CreatedAt atomically with
// the insert, so for any conversation the ID order matches commit order.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, username, displayName, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsersExcept(ctx context.Context, id int64) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Message operations
	AppendMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error)
	Conversation(ctx context.Context, userA, userB int64) ([]models.ConversationEntry, error)
	CountMessages(ctx context.Context) (int64, error)
}
