// Package apiclient is the single way out to the SmartSales365 backend. It
// attaches the stored access token to every request and treats a 401 from
// the backend as the end of the session.
package apiclient

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
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/internal/config"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
)

// response is a fully read backend response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// Client talks JSON to the backend.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store

	retryAttempts int
	retryDelay    time.Duration
	retrier       retry.Retry[*response]

	mu          sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

type Option func(*Client)

// WithTransport replaces the underlying round tripper. The bearer token
// transport still wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = &bearerTransport{base: rt, source: session.TokenSource(c.store)}
	}
}

// WithRetry sets how many times an idempotent GET is attempted and the
// initial backoff delay. attempts <= 1 disables retries.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = initialDelay
	}
}

// New creates a client for baseURL that reads and clears tokens in store.
func New(baseURL string, timeout time.Duration, store session.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("apiclient: session store is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		store:         store,
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
		subscribers:   make(map[int]func()),
	}
	c.http = &http.Client{
		Timeout:   timeout,
		Transport: &bearerTransport{base: http.DefaultTransport, source: session.TokenSource(store)},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.retryAttempts > 1 {
		c.retrier = retry.New[*response](retry.Config{
			MaxAttempts:   c.retryAttempts,
			InitialDelay:  c.retryDelay,
			MaxDelay:      5 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		})
	}
	return c, nil
}

// NewFromConfig creates a client from the console configuration.
func NewFromConfig(cfg config.APIConfig, store session.Store, opts ...Option) (*Client, error) {
	opts = append([]Option{WithRetry(cfg.GetAPIRetryAttempts(), 500*time.Millisecond)}, opts...)
	return New(cfg.GetAPIBaseURL(), cfg.GetAPITimeout(), store, opts...)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionInvalidated registers fn to run each time a backend response
// invalidates the session. The returned function unregisters it.
func (c *Client) OnSessionInvalidated(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

type contextKey int

const keepSessionKey contextKey = iota

// KeepSessionOn401 marks requests whose 401 answers say nothing about the
// stored session, such as a login attempt with wrong credentials. Do still
// returns the 401 but leaves the session and the subscribers alone.
func KeepSessionOn401(ctx context.Context) context.Context {
	return context.WithValue(ctx, keepSessionKey, true)
}

func keepsSession(ctx context.Context) bool {
	keep, _ := ctx.Value(keepSessionKey).(bool)
	return keep
}

// Do sends one request. A non-2xx status comes back as *errors.APIError. A
// 401 additionally clears the stored session and notifies the
// OnSessionInvalidated subscribers before Do returns, unless ctx was marked
// with KeepSessionOn401. Retries of a GET share one deadline of the client
// timeout.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	requestID := uuid.NewString()

	send := func(ctx context.Context) (*response, error) {
		return c.send(ctx, method, endpoint, requestID, payload)
	}

	if c.http.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.http.Timeout)
		defer cancel()
	}

	start := time.Now()
	var resp *response
	var err error
	if method == http.MethodGet && c.retrier != nil {
		resp, err = c.retrier.Do(ctx, send)
	} else {
		resp, err = send(ctx)
	}
	if err != nil {
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) {
			apiErr.Method, apiErr.Path = method, path
			return apiErr
		}
		log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.status).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.status == http.StatusUnauthorized && !keepsSession(ctx) {
		c.invalidateSession(requestID)
	}
	if resp.status < 200 || resp.status > 299 {
		return newAPIError(method, path, resp)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint, requestID string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}
	if retryableStatus(resp.status) {
		return nil, newAPIError(method, endpoint, resp)
	}
	return resp, nil
}

func (c *Client) invalidateSession(requestID string) {
	if err := session.Clear(c.store); err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("failed to clear session after 401")
	}
	log.Info().Str("request_id", requestID).Msg("backend rejected credentials, session cleared")

	c.mu.Lock()
	subscribers := make([]func(), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}

func newAPIError(method, path string, resp *response) *apperrors.APIError {
	return &apperrors.APIError{
		Status: resp.status,
		Method: method,
		Path:   path,
		Detail: extractDetail(resp.body),
		Body:   resp.body,
	}
}

// extractDetail pulls a human readable message out of an error payload.
func extractDetail(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		switch v := payload[key].(type) {
		case string:
			return v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Status)
	}
	// transport level failure
	return true
}
