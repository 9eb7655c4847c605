// Package vartalab is a small client library for the VartaLab chat server:
// account signup/login over HTTP and realtime messaging over WebSocket.
package vartalab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// User mirrors the server's public user shape.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ConversationMessage mirrors one entry of the conversation API response.
type ConversationMessage struct {
	Text              string    `json:"text"`
	CreatedAt         time.Time `json:"created_at"`
	SenderUsername    string    `json:"sender_username"`
	SenderDisplayName string    `json:"sender_display_name"`
	IsOwn             bool      `json:"is_own"`
}

// Client talks to a VartaLab server. Authenticate with Signup or Login
// before calling the other methods.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
	user    *User
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the current session token, empty before login.
func (c *Client) Token() string { return c.token }

// User returns the authenticated user, nil before login.
func (c *Client) User() *User { return c.user }

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Signup creates an account and starts a session.
func (c *Client) Signup(ctx context.Context, username, password, displayName string) error {
	body := map[string]string{
		"username":     username,
		"password":     password,
		"display_name": displayName,
	}
	var resp authResponse
	if err := c.post(ctx, "/signup", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

// Login verifies credentials and starts a session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp authResponse
	if err := c.post(ctx, "/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	c.user = resp.User
	return nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, "/logout", nil, nil)
	c.token = ""
	c.user = nil
	return err
}

// Users lists every other registered user.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser looks up a user by exact username.
func (c *Client) FindUser(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/search/"+url.PathEscape(username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Conversation fetches the full ordered history with another user.
func (c *Client) Conversation(ctx context.Context, otherID int64) ([]ConversationMessage, error) {
	var msgs []ConversationMessage
	if err := c.get(ctx, fmt.Sprintf("/api/messages/%d", otherID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: HTTP %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
