package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photonp05/VartaLab/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func seedUsers(t *testing.T, s *SQLiteStore) (*models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	alice, err := s.CreateUser(ctx, "alice", "Alice", "hash-a")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "Bob", "hash-b")
	require.NoError(t, err)
	return alice, bob
}

func TestCreateAndGetUser(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := seedUsers(t, s)
	req.Equal("alice", alice.Username)
	req.Equal("Alice", alice.DisplayName)
	req.NotZero(alice.ID)
	req.False(alice.CreatedAt.IsZero())

	byID, err := s.GetUserByID(ctx, alice.ID)
	req.NoError(err)
	req.Equal(alice.Username, byID.Username)

	byName, err := s.GetUserByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal(alice.ID, byName.ID)
}

func TestGetUserAbsentIsNil(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetUserByID(ctx, 999)
	req.NoError(err)
	req.Nil(u)

	u, err = s.GetUserByUsername(ctx, "nobody")
	req.NoError(err)
	req.Nil(u)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "Alice", "h1")
	req.NoError(err)
	_, err = s.CreateUser(ctx, "alice", "Alice Again", "h2")
	req.Error(err)
}

func TestListUsersExcept(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)

	users, err := s.ListUsersExcept(ctx, alice.ID)
	req.NoError(err)
	req.Len(users, 1)
	req.Equal(bob.ID, users[0].ID)
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)

	msg, err := s.AppendMessage(ctx, alice.ID, bob.ID, "hi")
	req.NoError(err)
	req.NotZero(msg.ID)
	req.False(msg.CreatedAt.IsZero())
	req.Equal(alice.ID, msg.SenderID)
	req.Equal(bob.ID, msg.ReceiverID)
	req.Equal("hi", msg.Text)
}

func TestAppendRejectsEmptyText(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)

	_, err := s.AppendMessage(ctx, alice.ID, bob.ID, "")
	req.Error(err)

	count, err := s.CountMessages(ctx)
	req.NoError(err)
	req.Zero(count)
}

func TestAppendRejectsUnknownUsers(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := seedUsers(t, s)

	_, err := s.AppendMessage(ctx, alice.ID, 999, "hi")
	req.Error(err)

	_, err = s.AppendMessage(ctx, 999, alice.ID, "hi")
	req.Error(err)
}

func TestConversationOrderAndDirection(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)
	carol, err := s.CreateUser(ctx, "carol", "Carol", "hash-c")
	req.NoError(err)

	texts := []struct {
		from, to int64
		text     string
	}{
		{alice.ID, bob.ID, "one"},
		{bob.ID, alice.ID, "two"},
		{alice.ID, carol.ID, "other conversation"},
		{alice.ID, bob.ID, "three"},
	}
	for _, m := range texts {
		_, err := s.AppendMessage(ctx, m.from, m.to, m.text)
		req.NoError(err)
	}

	// Both directions, commit order, other conversations excluded
	conv, err := s.Conversation(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Len(conv, 3)
	req.Equal("one", conv[0].Text)
	req.Equal("two", conv[1].Text)
	req.Equal("three", conv[2].Text)
	req.Equal("alice", conv[0].SenderUsername)
	req.Equal("bob", conv[1].SenderUsername)

	// Pair is unordered: same result either way round
	rev, err := s.Conversation(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(conv, rev)

	// Timestamps never decrease
	for i := 1; i < len(conv); i++ {
		req.False(conv[i].CreatedAt.Before(conv[i-1].CreatedAt))
	}
}

func TestConversationEmpty(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)

	conv, err := s.Conversation(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Empty(conv)
}

func TestCounts(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, bob := seedUsers(t, s)

	users, err := s.CountUsers(ctx)
	req.NoError(err)
	req.Equal(int64(2), users)

	_, err = s.AppendMessage(ctx, alice.ID, bob.ID, "hi")
	req.NoError(err)

	msgs, err := s.CountMessages(ctx)
	req.NoError(err)
	req.Equal(int64(1), msgs)
}
