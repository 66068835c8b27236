// Package scryfall looks cards up by name on the Scryfall API.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 10 req/sec, Scryfall's published limit
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client is a Scryfall API client with rate limiting.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	userAgent      string
	baseURL        string
	initialBackoff time.Duration
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another server, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRateLimit sets the minimum delay between requests. Zero disables limiting.
func WithRateLimit(every time.Duration) Option {
	return func(c *Client) {
		if every <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.rateLimiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// WithLogger sets the logger used for retries.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new Scryfall API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		rateLimiter:    rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:      "PRISM/1.0",
		baseURL:        DefaultBaseURL,
		initialBackoff: initialBackoff,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NamedCard looks a card up by exact name, falling back to Scryfall's fuzzy match.
func (c *Client) NamedCard(ctx context.Context, name string) (*Card, error) {
	var card Card
	err := c.doRequest(ctx, c.namedURL("exact", name), &card)
	if err == nil {
		return &card, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	c.logger.Debug().Str("card", name).Msg("Exact lookup missed, trying fuzzy match")
	card = Card{}
	if err := c.doRequest(ctx, c.namedURL("fuzzy", name), &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}
	return &card, nil
}

func (c *Client) namedURL(mode, name string) string {
	q := url.Values{}
	q.Set(mode, name)
	return fmt.Sprintf("%s/cards/named?%s", c.baseURL, q.Encode())
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries && ctx.Err() == nil {
				c.logger.Debug().Err(err).Int("attempt", attempt+1).Msg("Retrying Scryfall request")
				if err := sleep(ctx, backoff); err != nil {
					return err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			return &NotFoundError{URL: url}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
			if attempt < maxRetries {
				wait := backoff
				if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
					wait = time.Duration(secs) * time.Second
				}
				c.logger.Debug().Int("status", resp.StatusCode).Dur("wait", wait).Msg("Retrying Scryfall request")
				if err := sleep(ctx, wait); err != nil {
					return err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		default:
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
