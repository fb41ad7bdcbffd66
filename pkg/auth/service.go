// Package auth manages the OAuth2 credential session for the agri-aqua
// platform: login, single-flight token refresh, and a transport
// middleware that recovers from a single 401 per request.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// expiryBuffer is subtracted from the server-reported lifetime when the
// expiry instant is stored, so tokens are treated as stale 60 seconds
// before they actually lapse.
const expiryBuffer = 60 * time.Second

// Config holds authentication endpoints and client credentials.
type Config struct {
	// RegisterURL is the endpoint for user registration.
	RegisterURL string
	// LoginURL is the endpoint for acquiring new tokens.
	LoginURL string
	// TokenURL is the endpoint for refreshing expired access tokens.
	TokenURL string
	// ClientID is the API client / app ID.
	ClientID string
	// ClientSecret is the API client secret.
	ClientSecret string
	// HTTPClient overrides the client used for token calls. Defaults to
	// one with a 10 second timeout.
	HTTPClient *http.Client
}

// Service owns the credential session: access and refresh tokens, their
// buffered expiry instant, and the single-flight refresh coordinator.
// It is the only writer of token state; login, refresh completion, and
// logout are the only mutations.
type Service struct {
	cfg        Config
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// refreshGroup collapses concurrent Refresh calls into one network
	// request; all callers share its outcome.
	refreshGroup singleflight.Group

	nowFn func() time.Time
}

// NewService creates an authentication service with no session. Call
// Login to establish one.
func NewService(cfg Config) *Service {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{
		cfg:        cfg,
		httpClient: httpClient,
		nowFn:      time.Now,
	}
}

// Login authenticates with username and password via the OAuth2 password
// grant and stores the resulting session in memory. Login is a mutation
// and is never retried.
func (s *Service) Login(ctx context.Context, username, password string) error {
	tokens, err := s.postToken(ctx, "login", s.cfg.LoginURL, map[string]string{
		"grant_type":    "password",
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"username":      username,
		"password":      password,
	})
	if err != nil {
		return err
	}

	s.storeTokens(tokens)
	return nil
}

// AccessToken returns the current access token if one is present and not
// past its buffered expiry. It is a read-only check and never triggers a
// refresh.
func (s *Service) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" {
		return "", ErrNotAuthenticated
	}
	if s.nowFn().After(s.expiresAt) {
		return "", ErrTokenExpired
	}
	return s.accessToken, nil
}

// Refresh exchanges the stored refresh token for a new session. If a
// refresh is already in flight, all callers await that same operation and
// receive its outcome; a new attempt is possible only after the pending
// one settles.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, shared := s.refreshGroup.Do("refresh", func() (any, error) {
		return nil, s.doRefresh(ctx)
	})
	if shared {
		log.Debug().Msg("Joined in-flight token refresh")
	}
	return err
}

func (s *Service) doRefresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		return ErrMissingRefreshToken
	}

	tokens, err := s.postToken(ctx, "refresh", s.cfg.TokenURL, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
	})
	if err != nil {
		return err
	}

	s.storeTokens(tokens)
	return nil
}

// Register creates a new user account. It does not establish a session.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := s.postJSON(ctx, "register", s.cfg.RegisterURL, req)
	if err != nil {
		return nil, err
	}

	var resp RegistrationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SchemaError{Op: "register", Fields: []string{"body"}}
	}
	if err := resp.validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the session synchronously. No network call is made.
func (s *Service) Logout() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	log.Info().Msg("User logged out, tokens cleared")
}

// storeTokens updates session state from a validated token response.
func (s *Service) storeTokens(tokens *TokenResponse) {
	expiresAt := s.nowFn().Add(time.Duration(tokens.ExpiresIn)*time.Second - expiryBuffer)

	s.mu.Lock()
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = expiresAt
	s.mu.Unlock()

	// Never log token values.
	log.Info().Time("expiresAt", expiresAt).Msg("Tokens updated")
}

// postToken submits a token request and validates the response shape.
// Network failures propagate unmodified; token endpoints are POSTs and
// are never retried at this layer.
func (s *Service) postToken(ctx context.Context, op, endpoint string, payload map[string]string) (*TokenResponse, error) {
	body, err := s.postJSON(ctx, op, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, &SchemaError{Op: op, Fields: []string{"body"}}
	}
	if err := tokens.validate(op); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (s *Service) postJSON(ctx context.Context, op, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Op:         op,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}
