package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenServer fakes the login and refresh endpoints. It counts hits per
// endpoint and can be told to fail or stall.
type tokenServer struct {
	*httptest.Server

	loginHits   atomic.Int64
	refreshHits atomic.Int64

	refreshDelay  time.Duration
	refreshStatus int // 0 means 200
	expiresIn     int
	tokenSeq      atomic.Int64
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()

	ts := &tokenServer{expiresIn: 3600}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		ts.loginHits.Add(1)
		ts.serveTokens(t, w, r, "password")
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		ts.refreshHits.Add(1)
		if ts.refreshDelay > 0 {
			time.Sleep(ts.refreshDelay)
		}
		if ts.refreshStatus != 0 {
			w.WriteHeader(ts.refreshStatus)
			return
		}
		ts.serveTokens(t, w, r, "refresh_token")
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) serveTokens(t *testing.T, w http.ResponseWriter, r *http.Request, wantGrant string) {
	t.Helper()

	// Handlers run on server goroutines, so assert (not require) here.
	var payload map[string]string
	if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	assert.Equal(t, wantGrant, payload["grant_type"])
	assert.Equal(t, "client-1", payload["client_id"])
	assert.Equal(t, "secret-1", payload["client_secret"])

	seq := ts.tokenSeq.Add(1)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken:  fmt.Sprintf("access-%d", seq),
		RefreshToken: fmt.Sprintf("refresh-%d", seq),
		ExpiresIn:    ts.expiresIn,
		TokenType:    "Bearer",
	})
}

func (ts *tokenServer) config() Config {
	return Config{
		RegisterURL:  ts.URL + "/register",
		LoginURL:     ts.URL + "/login",
		TokenURL:     ts.URL + "/token",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}
}

func TestLogin_Success(t *testing.T) {
	ts := newTokenServer(t)
	svc := NewService(ts.config())

	require.NoError(t, svc.Login(context.Background(), "alice", "hunter22"))

	token, err := svc.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)
	assert.EqualValues(t, 1, ts.loginHits.Load())
}

func TestLogin_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	svc := NewService(Config{LoginURL: server.URL, ClientID: "c", ClientSecret: "s"})
	err := svc.Login(context.Background(), "alice", "wrong")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "login", authErr.Op)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)

	// Failed login leaves no session.
	_, err = svc.AccessToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogin_SchemaValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// refresh_token and token_type missing
		w.Write([]byte(`{"access_token":"a","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	svc := NewService(Config{LoginURL: server.URL})
	err := svc.Login(context.Background(), "alice", "pw")

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "login", schemaErr.Op)
	assert.Contains(t, schemaErr.Fields, "refresh_token")
	assert.Contains(t, schemaErr.Fields, "token_type")
}

func TestAccessToken_ExpiryBuffer(t *testing.T) {
	ts := newTokenServer(t)
	svc := NewService(ts.config())

	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return current }

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))

	// Valid until expires_in minus the 60s buffer.
	current = current.Add(3600*time.Second - 61*time.Second)
	_, err := svc.AccessToken()
	assert.NoError(t, err)

	current = current.Add(2 * time.Second)
	_, err = svc.AccessToken()
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_NotAuthenticated(t *testing.T) {
	svc := NewService(Config{})
	_, err := svc.AccessToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRefresh_MissingRefreshToken(t *testing.T) {
	ts := newTokenServer(t)
	svc := NewService(ts.config())

	err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
	assert.EqualValues(t, 0, ts.refreshHits.Load())
}

func TestRefresh_ReplacesSession(t *testing.T) {
	ts := newTokenServer(t)
	svc := NewService(ts.config())

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))
	require.NoError(t, svc.Refresh(context.Background()))

	token, err := svc.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.EqualValues(t, 1, ts.refreshHits.Load())
}

func TestRefresh_SingleFlight(t *testing.T) {
	ts := newTokenServer(t)
	ts.refreshDelay = 200 * time.Millisecond
	svc := NewService(ts.config())

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	// All callers share one network refresh and agree on its outcome.
	assert.EqualValues(t, 1, ts.refreshHits.Load())
	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	// The in-flight marker is released once settled.
	require.NoError(t, svc.Refresh(context.Background()))
	assert.EqualValues(t, 2, ts.refreshHits.Load())
}

func TestRefresh_FailureReleasesLock(t *testing.T) {
	ts := newTokenServer(t)
	ts.refreshStatus = http.StatusInternalServerError
	svc := NewService(ts.config())

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))

	var authErr *Error
	err := svc.Refresh(context.Background())
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "refresh", authErr.Op)
	assert.Equal(t, http.StatusInternalServerError, authErr.Status)

	// Failure must not wedge the coordinator: a later call starts a
	// fresh network attempt.
	ts.refreshStatus = 0
	require.NoError(t, svc.Refresh(context.Background()))
	assert.EqualValues(t, 2, ts.refreshHits.Load())
}

func TestLogout(t *testing.T) {
	ts := newTokenServer(t)
	svc := NewService(ts.config())

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))
	svc.Logout()

	_, err := svc.AccessToken()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// Logout also discards the refresh token.
	err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
}

func TestRegister(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RegistrationRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "newuser", req.Username)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RegistrationResponse{
			UserID:   "u-42",
			Username: req.Username,
			Email:    req.Email,
			Message:  "created",
		})
	}))
	t.Cleanup(server.Close)

	svc := NewService(Config{RegisterURL: server.URL})
	resp, err := svc.Register(context.Background(), RegistrationRequest{
		Username: "newuser",
		Email:    "new@knbio.example",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-42", resp.UserID)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := NewService(Config{})

	_, err := svc.Register(context.Background(), RegistrationRequest{
		Username: "ab",      // too short
		Email:    "invalid", // no @
		Password: "short",
	})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.ElementsMatch(t, []string{"username", "email", "password"}, schemaErr.Fields)
}
