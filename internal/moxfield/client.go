// Package moxfield imports public decks from Moxfield.
package moxfield

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api2.moxfield.com"
	rateLimitDelay = time.Second
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

var (
	// ErrInvalidID is returned by ExtractID for input that is neither a deck ID nor a deck URL.
	ErrInvalidID = errors.New("invalid Moxfield URL or ID")

	// ErrDeckNotFound is returned when Moxfield has no public deck with the ID.
	ErrDeckNotFound = errors.New("moxfield deck not found")

	deckURLPattern = regexp.MustCompile(`moxfield\.com/decks/([A-Za-z0-9_-]+)`)
	deckIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ExtractID returns the deck ID of a Moxfield deck URL, or s itself when it already
// is a bare ID.
func ExtractID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if deckIDPattern.MatchString(s) {
		return s, nil
	}
	if m := deckURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
}

// Client fetches decks from the Moxfield API with rate limiting.
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

// WithBaseURL points the client at another server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
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

// WithBackoff sets the first retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Moxfield client. Moxfield asks for at most one request per second.
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

// FetchDeck downloads a public deck. id may be a deck URL.
func (c *Client) FetchDeck(ctx context.Context, id string) (*Deck, error) {
	deckID, err := ExtractID(id)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v3/decks/all/%s", c.baseURL, deckID)
	c.logger.Debug().Str("deck", deckID).Msg("Fetching Moxfield deck")

	var deck Deck
	if err := c.doRequest(ctx, url, &deck); err != nil {
		if errors.Is(err, ErrDeckNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
		}
		return nil, fmt.Errorf("failed to fetch deck %s: %w", deckID, err)
	}
	if deck.ID == "" {
		deck.ID = deckID
	}
	return &deck, nil
}

func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().Err(lastErr).Int("attempt", attempt).Dur("wait", backoff).Msg("Retrying Moxfield request")
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

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
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
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
			return ErrDeckNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
		default:
			return fmt.Errorf("API request failed with status %d", resp.StatusCode)
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
