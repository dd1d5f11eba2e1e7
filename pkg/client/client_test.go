package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI is a minimal fake of the auth endpoints: one fixed account,
// cookie-based sessions.
type stubAPI struct {
	sessionValue string
	user         User
	loggedIn     bool
	logoutCalls  int
}

func (s *stubAPI) handler() http.Handler {
	mux := http.NewServeMux()

	// Method-prefixed ServeMux patterns ("POST /auth/login") need Go 1.22+;
	// dispatch on the method explicitly so the stub also works on Go 1.21.
	handle := func(method, path string, fn http.HandlerFunc) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)
				return
			}
			fn(w, r)
		})
	}

	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	authed := func(r *http.Request) bool {
		if c, err := r.Cookie("civix_session"); err == nil && c.Value == s.sessionValue {
			return s.loggedIn
		}
		if r.Header.Get("Authorization") == "Bearer "+s.sessionValue {
			return s.loggedIn
		}
		return false
	}

	handle("POST", "/auth/register", func(w http.ResponseWriter, r *http.Request) {
		s.loggedIn = true
		http.SetCookie(w, &http.Cookie{Name: "civix_session", Value: s.sessionValue, Path: "/"})
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true, "user": s.user, "token": s.sessionValue,
		})
	})
	handle("POST", "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false, "message": "invalid credentials",
			})
			return
		}
		s.loggedIn = true
		http.SetCookie(w, &http.Cookie{Name: "civix_session", Value: s.sessionValue, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "user": s.user, "token": s.sessionValue,
		})
	})
	handle("GET", "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false, "message": "invalid credentials",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": s.user})
	})
	handle("POST", "/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.logoutCalls++
		s.loggedIn = false
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	return mux
}

func newStub(t *testing.T) (*stubAPI, *Client) {
	t.Helper()

	api := &stubAPI{
		sessionValue: "tok-123",
		user: User{
			ID: "u1", Name: "Jane Doe", Email: "jane@example.com",
			Role: "citizen", Location: "Chennai",
		},
	}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	return api, New(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestClient_LoadUnauthenticated(t *testing.T) {
	t.Parallel()

	_, cli := newStub(t)
	require.False(t, cli.Loaded())

	_, err := cli.Load(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.True(t, cli.Loaded())
	_, ok := cli.Current()
	assert.False(t, ok)
}

func TestClient_LoginPopulatesCacheSynchronously(t *testing.T) {
	t.Parallel()

	_, cli := newStub(t)

	user, err := cli.Login(context.Background(), "jane@example.com", "Secret123")
	require.NoError(t, err)
	require.NotNil(t, user)

	cached, ok := cli.Current()
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", cached.Email)

	// The session cookie must carry a subsequent Load without re-login.
	loaded, err := cli.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
}

func TestClient_FailedLoginLeavesCacheEmpty(t *testing.T) {
	t.Parallel()

	_, cli := newStub(t)

	_, err := cli.Login(context.Background(), "jane@example.com", "wrongpassword")
	require.Error(t, err)

	_, ok := cli.Current()
	assert.False(t, ok)
}

func TestClient_RegisterPopulatesCache(t *testing.T) {
	t.Parallel()

	_, cli := newStub(t)

	user, err := cli.Register(context.Background(), RegisterParams{
		Name: "Jane Doe", Email: "jane@example.com", Password: "Secret123",
		Role: "citizen", Location: "Chennai",
	})
	require.NoError(t, err)
	assert.Equal(t, "citizen", user.Role)

	_, ok := cli.Current()
	assert.True(t, ok)
}

func TestClient_LogoutClearsCacheUnconditionally(t *testing.T) {
	t.Parallel()

	api, cli := newStub(t)

	_, err := cli.Login(context.Background(), "jane@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, cli.Logout(context.Background()))
	assert.Equal(t, 1, api.logoutCalls)

	_, ok := cli.Current()
	assert.False(t, ok)

	// Even when the server is gone, the local cache is cleared.
	_, err = cli.Login(context.Background(), "jane@example.com", "Secret123")
	require.NoError(t, err)

	broken := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	broken.set(&User{ID: "u1"})
	_ = broken.Logout(context.Background())
	_, ok = broken.Current()
	assert.False(t, ok)
}

func TestClient_CanceledLoadLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	_, cli := newStub(t)

	_, err := cli.Login(context.Background(), "jane@example.com", "Secret123")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cli.Load(ctx)
	require.Error(t, err)

	// The cached user from the successful login survives the canceled call.
	cached, ok := cli.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", cached.ID)
}
