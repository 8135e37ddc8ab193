// Package httpclient is the single chokepoint for requests to the CRM backend.
// It attaches the bearer token, turns a 401 into a global session expiry and
// reduces error payloads to one message.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-console/internal/config"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/logger"
	"github.com/straye-as/crm-console/internal/storage"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Auth attaches the stored bearer token when one exists
	Auth bool
	// BearerToken overrides the stored token. Login uses it to fetch the
	// profile before the token is persisted.
	BearerToken string
}

// ExpiryListener is notified after a session expiry has cleared the token
type ExpiryListener func(ctx context.Context)

// Client sends requests through resty and owns 401 handling
type Client struct {
	http      *resty.Client
	tokens    storage.TokenStore
	navigator Navigator
	loginPath string
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]ExpiryListener
}

// Option customizes a Client
type Option func(*Client)

// WithClock replaces the clock used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithHTTPClient sends requests through hc instead of a default client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = newResty(resty.NewWithClient(hc), c.logger)
	}
}

// New creates a client for the backend described by cfg
func New(cfg *config.APIConfig, tokens storage.TokenStore, navigator Navigator, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		tokens:    tokens,
		navigator: navigator,
		loginPath: cfg.LoginPath,
		logger:    log,
		now:       time.Now,
		listeners: make(map[int]ExpiryListener),
	}
	c.http = newResty(resty.New(), log)
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		c.http.SetTimeout(cfg.TimeoutDuration())
	}
	if cfg.UserAgent != "" {
		c.http.SetHeader("User-Agent", cfg.UserAgent)
	}
	return c
}

func newResty(rc *resty.Client, log *zap.Logger) *resty.Client {
	// Requests are never retried
	return rc.
		SetRetryCount(0).
		SetLogger(log.Sugar()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// OnSessionExpired registers fn to run after every session expiry and
// returns a function that removes it
func (c *Client) OnSessionExpired(fn ExpiryListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Do sends req and decodes a successful JSON body into out. A nil out
// discards the body.
//
// Errors: domain.ErrSessionExpired after a 401 or an expired stored token,
// *domain.APIError for any other non-2xx status and *domain.TransportError
// when no response was received. A 401 to a request that carried no token
// is an *domain.APIError that unwraps to domain.ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	token := req.BearerToken
	if token == "" && req.Auth {
		stored, err := c.tokens.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load token: %w", err)
		}
		if stored != "" && tokenExpired(stored, c.now()) {
			c.logger.Info("Stored token has expired", zap.String("path", req.Path))
			return c.expire(ctx)
		}
		token = stored
	}

	requestID := uuid.NewString()
	log := logger.WithRequest(c.logger, req.Method, req.Path, requestID)

	r := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID)
	if token != "" {
		r.SetAuthToken(token)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	log.Debug("Sending request", zap.Bool("auth", token != ""))

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		log.Debug("Request failed", zap.Error(err))
		return &domain.TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	status := resp.StatusCode()
	log.Debug("Received response",
		zap.Int("status", status),
		zap.Duration("duration", resp.Time()),
	)

	if status == http.StatusUnauthorized {
		log.Info("Backend rejected credentials")
		err := c.expire(ctx)
		if token == "" {
			// Nothing was sent to expire, e.g. a failed login. Keep the
			// backend's reason while still matching ErrSessionExpired.
			return &domain.APIError{Status: status, Message: extractMessage(resp.Body()), Err: err}
		}
		return err
	}

	if !resp.IsSuccess() {
		return &domain.APIError{
			Status:  status,
			Message: extractMessage(resp.Body()),
		}
	}

	if out == nil || len(strings.TrimSpace(string(resp.Body()))) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}

// Get is a shorthand for an authenticated GET
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Auth: true}, out)
}

// Post is a shorthand for an authenticated POST
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Auth: true}, out)
}

// Put is a shorthand for an authenticated PUT
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Auth: true}, out)
}

// Delete is a shorthand for an authenticated DELETE
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Auth: true}, nil)
}

// expire clears the token, redirects to login unless already there and
// notifies listeners
func (c *Client) expire(ctx context.Context) error {
	// Cleanup must complete even if the caller's context is done
	ctx = context.WithoutCancel(ctx)

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Warn("Failed to clear token after session expiry", zap.Error(err))
	}

	if c.navigator != nil && !atLogin(c.navigator.Location(), c.loginPath) {
		c.navigator.Redirect(c.loginPath)
	}

	c.mu.Lock()
	listeners := make([]ExpiryListener, 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx)
	}

	c.logger.Warn("Session expired")
	return domain.ErrSessionExpired
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never count as expired.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}

// extractMessage reduces an error body to a message. The order is the
// JSON message field, the JSON error field, a JSON string body, then the
// raw text. An empty result lets APIError fall back to the status.
func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := obj["error"].(string); ok && msg != "" {
			return msg
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	if json.Valid(body) {
		return ""
	}
	return text
}
