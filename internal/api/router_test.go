package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/photonp05/VartaLab/internal/chat"
	"github.com/photonp05/VartaLab/internal/models"
	"github.com/photonp05/VartaLab/internal/relay"
	"github.com/photonp05/VartaLab/internal/session"
	"github.com/photonp05/VartaLab/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(ds.Close)

	sessions := session.NewMemoryStore(time.Hour)
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), ds, sessions, nil))
	t.Cleanup(srv.Close)
	return srv
}

type authResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func signup(t *testing.T, srv *httptest.Server, username, password string) authResult {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(srv.URL+"/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out authResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	require.NotNil(t, out.User)
	return out
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, ws *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var e wireEvent
	require.NoError(t, ws.ReadJSON(&e))
	return e
}

func expectNoEvent(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var e wireEvent
	require.Error(t, ws.ReadJSON(&e), "expected no event, got %+v", e)
}

// waitForConnections polls /stats until the presence registry reports n live
// connections. The registry bind happens on the server goroutine just after
// the handshake, so a dial returning does not yet guarantee it.
func waitForConnections(t *testing.T, srv *httptest.Server, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/stats")
		require.NoError(t, err)
		var stats struct {
			LiveConnections int `json:"live_connections"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
		resp.Body.Close()
		if stats.LiveConnections == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d live connections, have %d", n, stats.LiveConnections)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func sendMessage(t *testing.T, ws *websocket.Conn, receiverID int64, text string) {
	t.Helper()
	payload := map[string]any{"receiver_id": receiverID, "text": text}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(wireEvent{Event: relay.EventSendMessage, Data: data}))
}

func TestSignupLoginLogout(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")

	// Duplicate username
	resp := doJSON(t, http.MethodPost, srv.URL+"/signup", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	req.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Wrong password
	resp = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Unknown user gets the same answer
	resp = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"username": "mallory", "password": "password123",
	})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Correct login
	resp = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	var login authResult
	req.NoError(json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	req.NotEmpty(login.Token)

	// Logout revokes the token
	resp = doJSON(t, http.MethodPost, srv.URL+"/logout", login.Token, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users", login.Token, nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The original signup token still works
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users", alice.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSignupValidation(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	cases := []map[string]string{
		{"username": "ab", "password": "password123"},         // too short
		{"username": "has spaces", "password": "password123"}, // bad alphabet
		{"username": "alice", "password": "short"},            // weak password
	}
	for _, c := range cases {
		resp := doJSON(t, http.MethodPost, srv.URL+"/signup", "", c)
		req.Equal(http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestUsersAndSearch(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	// List excludes the requester
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users", alice.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var users []chat.UserSummary
	req.NoError(json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	req.Len(users, 1)
	req.Equal(bob.User.ID, users[0].ID)

	// Exact search
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/search/bob", alice.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Absent user
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/search/nobody", alice.Token, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Searching yourself is a miss
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/search/alice", alice.Token, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWSRequiresAuth(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestRelayLiveDelivery(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	aliceWS := dialWS(t, srv, alice.Token)
	bobWS := dialWS(t, srv, bob.Token)
	waitForConnections(t, srv, 2)

	sendMessage(t, aliceWS, bob.User.ID, "hi")

	// Bob's connection receives the inbound event
	e := readEvent(t, bobWS)
	req.Equal(relay.EventReceiveMessage, e.Event)
	var inbound relay.InboundMessage
	req.NoError(json.Unmarshal(e.Data, &inbound))
	req.Equal("hi", inbound.Text)
	req.Equal(alice.User.ID, inbound.SenderID)
	req.Equal("alice", inbound.SenderUsername)
	req.False(inbound.CreatedAt.IsZero())

	// Alice's connection receives the confirmation
	e = readEvent(t, aliceWS)
	req.Equal(relay.EventMessageSent, e.Event)
	var ack relay.SendConfirmation
	req.NoError(json.Unmarshal(e.Data, &ack))
	req.Equal("hi", ack.Text)
	req.Equal(bob.User.ID, ack.ReceiverID)

	// Both sides see the message in the conversation API
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/messages/%d", srv.URL, bob.User.ID), alice.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var fromAlice []chat.ConversationMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&fromAlice))
	resp.Body.Close()
	req.Len(fromAlice, 1)
	req.True(fromAlice[0].IsOwn)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/messages/%d", srv.URL, alice.User.ID), bob.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var fromBob []chat.ConversationMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&fromBob))
	resp.Body.Close()
	req.Len(fromBob, 1)
	req.False(fromBob[0].IsOwn)
	req.Equal("alice", fromBob[0].SenderUsername)
}

func TestRelayOfflineReceiver(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	// Bob never connects
	aliceWS := dialWS(t, srv, alice.Token)
	sendMessage(t, aliceWS, bob.User.ID, "hi")

	e := readEvent(t, aliceWS)
	req.Equal(relay.EventMessageSent, e.Event)

	// Bob recovers the message on pull
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/messages/%d", srv.URL, alice.User.ID), bob.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var msgs []chat.ConversationMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&msgs))
	resp.Body.Close()
	req.Len(msgs, 1)
	req.Equal("hi", msgs[0].Text)
}

func TestRelayRejectsInvalidInput(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	aliceWS := dialWS(t, srv, alice.Token)
	bobWS := dialWS(t, srv, bob.Token)
	waitForConnections(t, srv, 2)

	// Unknown receiver
	sendMessage(t, aliceWS, 999, "x")
	e := readEvent(t, aliceWS)
	req.Equal(relay.EventError, e.Event)
	var werr relay.ErrorEvent
	req.NoError(json.Unmarshal(e.Data, &werr))
	req.Equal("invalid_input", werr.Code)

	// Empty text is rejected the same way
	sendMessage(t, aliceWS, bob.User.ID, "")
	e = readEvent(t, aliceWS)
	req.Equal(relay.EventError, e.Event)
	req.NoError(json.Unmarshal(e.Data, &werr))
	req.Equal("invalid_input", werr.Code)

	// Nothing was persisted
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/messages/%d", srv.URL, bob.User.ID), alice.Token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var msgs []chat.ConversationMessage
	req.NoError(json.NewDecoder(resp.Body).Decode(&msgs))
	resp.Body.Close()
	req.Empty(msgs)

	// And bob saw nothing
	expectNoEvent(t, bobWS)
}

func TestRelayMultipleReceiverConnections(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	aliceWS := dialWS(t, srv, alice.Token)
	bobTab1 := dialWS(t, srv, bob.Token)
	bobTab2 := dialWS(t, srv, bob.Token)
	waitForConnections(t, srv, 3)

	sendMessage(t, aliceWS, bob.User.ID, "hi")

	// Every one of bob's connections gets the push
	e1 := readEvent(t, bobTab1)
	req.Equal(relay.EventReceiveMessage, e1.Event)
	e2 := readEvent(t, bobTab2)
	req.Equal(relay.EventReceiveMessage, e2.Event)

	// The ack goes to the sending connection only
	e := readEvent(t, aliceWS)
	req.Equal(relay.EventMessageSent, e.Event)
}

func TestStatsEndpoint(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := signup(t, srv, "alice", "password123")
	bob := signup(t, srv, "bob", "password123")

	aliceWS := dialWS(t, srv, alice.Token)
	waitForConnections(t, srv, 1)
	sendMessage(t, aliceWS, bob.User.ID, "hi")
	readEvent(t, aliceWS) // wait for the ack so the message is counted

	resp, err := http.Get(srv.URL + "/stats")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var stats struct {
		Users           int64 `json:"users"`
		Messages        int64 `json:"messages"`
		LiveConnections int   `json:"live_connections"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Equal(int64(2), stats.Users)
	req.Equal(int64(1), stats.Messages)
	req.Equal(1, stats.LiveConnections)
}
