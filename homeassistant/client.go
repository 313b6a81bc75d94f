package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// StateFetcher reads a single entity state from the hub.
type StateFetcher interface {
	GetState(ctx context.Context, entityID string) (*EntityState, error)
}

// APIError is a non-2xx response from the hub.
type APIError struct {
	EntityID   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sensor '%s' not found or API error (status %d)", e.EntityID, e.StatusCode)
}

// Client talks to the Home Assistant REST API with a long-lived access token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limit   *rate.Limiter
	timeout time.Duration
	log     *zap.Logger
}

type Option func(c *Client) error

func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("hub base URL is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("hub access token is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
		limit:   rate.NewLimiter(rate.Every(time.Second), 4),
		timeout: 10 * time.Second,
		log:     zap.L(),
	}

	// apply the options
	for _, o := range opts {
		err := o(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.client = hc
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) error {
		c.limit = l
		return nil
	}
}

// GetState fetches the current state of one entity. A non-2xx status is
// returned as *APIError.
func (c *Client) GetState(ctx context.Context, entityID string) (*EntityState, error) {
	if strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("entity id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.Debug("fetching entity state", zap.String("entityId", entityID))
	stateURL := c.baseURL + "/api/states/" + url.PathEscape(entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return nil, fmt.Errorf("await rate limit: %w", err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("error fetching entity state", zap.String("entityId", entityID), zap.Error(err))
		return nil, fmt.Errorf("fetch '%s': %w", entityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("hub returned error status",
			zap.String("entityId", entityID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &APIError{EntityID: entityID, StatusCode: resp.StatusCode}
	}

	var state EntityState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("invalid JSON from sensor '%s': %w", entityID, err)
	}
	if state.EntityID == "" {
		state.EntityID = entityID
	}

	return &state, nil
}
