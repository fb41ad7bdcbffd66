package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	// BaseURL is prepended to every endpoint path (e.g. https://api.knbio.example/v1).
	BaseURL string
	// Headers are sent with every request.
	Headers http.Header
	// Timeout bounds each request unless overridden per call.
	Timeout time.Duration
}

// RequestOptions carries per-request parameters.
type RequestOptions struct {
	// Params are appended to the URL as query parameters.
	Params url.Values
	// Header values are merged over the client defaults.
	Header http.Header
	// Body is JSON-encoded when non-nil.
	Body any
	// Timeout overrides the client timeout for this request.
	Timeout time.Duration
}

// Perform executes one HTTP call and returns the raw response body,
// mapping any non-2xx status to an *Error. It is the unit the auth
// interceptor wraps.
type Perform func(ctx context.Context, method, endpoint string, opts RequestOptions) ([]byte, error)

// Middleware decorates a Perform with additional behavior.
type Middleware func(next Perform) Perform

// Client is the HTTP transport for the agri-aqua platform API.
type Client struct {
	baseURL    string
	headers    http.Header
	timeout    time.Duration
	httpClient *http.Client
	perform    Perform
}

// NewClient creates an API client. Middlewares wrap the transport
// outermost-first, so the first middleware sees each request before
// any other.
func NewClient(cfg ClientConfig, mws ...Middleware) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		headers: cfg.Headers.Clone(),
		timeout: timeout,
		// Per-request deadlines come from the context; the http.Client
		// itself stays unbounded so option timeouts can exceed the default.
		httpClient: &http.Client{},
	}
	if c.headers == nil {
		c.headers = http.Header{}
	}

	perform := c.do
	for i := len(mws) - 1; i >= 0; i-- {
		perform = mws[i](perform)
	}
	c.perform = perform

	return c
}

// Do executes a request through the full middleware chain and returns
// the raw response body.
func (c *Client) Do(ctx context.Context, method, endpoint string, opts RequestOptions) ([]byte, error) {
	return c.perform(ctx, method, endpoint, opts)
}

// Get performs a GET request and decodes the JSON response into out.
// GETs are retried on transient failures.
func (c *Client) Get(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, opts, out)
}

// Post performs a POST request and decodes the JSON response into out.
// Mutations fire exactly once.
func (c *Client) Post(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, opts, out)
}

// Put performs a PUT request and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, opts, out)
}

// Delete performs a DELETE request and decodes the JSON response into out.
func (c *Client) Delete(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, opts, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, opts RequestOptions, out any) error {
	body, err := c.perform(ctx, method, endpoint, opts)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// do performs one logical request: URL construction, header merge,
// timeout, retry for idempotent methods, and error mapping.
func (c *Client) do(ctx context.Context, method, endpoint string, opts RequestOptions) ([]byte, error) {
	reqURL, err := c.buildURL(endpoint, opts.Params)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if opts.Body != nil {
		payload, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	requestID := uuid.NewString()
	retryable := method == http.MethodGet || method == http.MethodHead

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := initialBackoff * time.Duration(1<<(attempt-1))
			log.Warn().
				Str("requestId", requestID).
				Str("method", method).
				Str("url", reqURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying request after transient failure")

			backoffTimer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				if !backoffTimer.Stop() {
					<-backoffTimer.C
				}
				return nil, mapContextErr(ctx.Err(), method, reqURL)
			case <-backoffTimer.C:
			}
		}

		body, err := c.doOnce(ctx, method, reqURL, payload, opts.Header, requestID)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable || attempt == maxRetries || !isTransient(err) {
			return nil, err
		}
	}

	// Unreachable: the loop always returns on the final attempt.
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, reqURL string, payload []byte, header http.Header, requestID string) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, values := range c.headers {
		req.Header[key] = values
	}
	for key, values := range header {
		req.Header[key] = values
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().
		Str("requestId", requestID).
		Str("method", method).
		Str("url", reqURL).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, mapContextErr(ctxErr, method, reqURL)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, mapContextErr(ctxErr, method, reqURL)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(params) > 0 {
		query := u.Query()
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// mapContextErr converts a deadline expiry into a timeout Error so retry
// and interceptor logic can treat it like any other non-401 failure.
func mapContextErr(ctxErr error, method, reqURL string) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		log.Warn().Str("method", method).Str("url", reqURL).Msg("Request timed out")
		return &Error{
			Status:     http.StatusRequestTimeout,
			StatusText: "Request Timeout",
			Body:       []byte(`{"message":"client timed out"}`),
		}
	}
	return ctxErr
}

// isTransient reports whether an error is worth retrying: server-side
// 5xx responses and network failures. Timeouts (mapped to 408) and all
// other API errors are terminal.
func isTransient(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status <= 599
	}
	// Context cancellation is the caller's decision, never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
