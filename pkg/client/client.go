// Package client is the Go counterpart of the browser auth context: a
// small API client that caches the current user so callers can gate
// protected views without re-validating the session on every check.
package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// User is the sanitized account shape returned by the API.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Verified bool   `json:"verified"`
}

// RegisterParams carries the registration form fields.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// APIError carries the server's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the auth API and mirrors the session state. The cookie jar
// replays the session cookie automatically; the bearer token is kept as
// well for deployments without cookie support. The cache is authoritative
// for nothing: the server decides validity, the cache only avoids
// redundant round trips.
type Client struct {
	http *resty.Client

	mu     sync.RWMutex
	user   *User
	loaded bool
}

// New builds a client. The zero Timeout defaults to 15s.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: cli}
}

// Current returns the cached user. ok is false while no authenticated
// session is cached. It never touches the network.
func (c *Client) Current() (*User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil, false
	}
	copied := *c.user
	return &copied, true
}

// Loaded reports whether the initial Load round trip has completed.
// Callers should treat the session as pending, not unauthenticated,
// until it returns true.
func (c *Client) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Load performs the single who-am-I round trip that rebuilds the cache on
// startup. On any server-side failure the cached session is cleared. A
// canceled context leaves the cache untouched so a torn-down caller never
// mutates shared state.
func (c *Client) Load(ctx context.Context) (*User, error) {
	var body envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetError(&body).
		Get("/auth/me")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if resp.IsError() {
		c.clear()
		return nil, &APIError{Status: resp.StatusCode(), Message: body.Message}
	}

	c.set(body.User)
	return body.User, nil
}

// Register creates an account and caches the resulting session
// synchronously; no extra who-am-I call is needed.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*User, error) {
	return c.authCall(ctx, "/auth/register", params)
}

// Login authenticates and caches the resulting session synchronously. The
// cache mutates only after the server round trip succeeds.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authCall(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Logout revokes the session best-effort and clears the cache
// unconditionally, even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.clear()

	var body envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetError(&body).
		Post("/auth/logout")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: body.Message}
	}
	return nil
}

func (c *Client) authCall(ctx context.Context, path string, payload any) (*User, error) {
	var body envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&body).
		SetError(&body).
		Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: body.Message}
	}

	if body.Token != "" {
		c.http.SetAuthToken(body.Token)
	}
	c.set(body.User)
	return body.User, nil
}

func (c *Client) set(user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	c.loaded = true
}

// clear drops the cached user and bearer token. It marks the client loaded:
// a cleared session is a known-unauthenticated state, not a pending one.
func (c *Client) clear() {
	c.http.SetAuthToken("")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.loaded = true
}
