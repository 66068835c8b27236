package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage/models"
	"github.com/codwats/prism/internal/storage/repository"
)

// DefaultCacheTTL is how long a cached card lookup stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Lookup resolves a card by name.
type Lookup interface {
	NamedCard(ctx context.Context, name string) (*Card, error)
}

// CachedClient serves card lookups from the local card cache, falling back to
// the API for misses and stale entries.
type CachedClient struct {
	api    Lookup
	cache  repository.CardCacheRepository
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewCachedClient wraps api with cache. A ttl <= 0 uses DefaultCacheTTL.
func NewCachedClient(api Lookup, cache repository.CardCacheRepository, ttl time.Duration, logger zerolog.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{
		api:    api,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// NamedCard returns the card for name. Cache read and write failures are logged
// and never fail the lookup.
func (c *CachedClient) NamedCard(ctx context.Context, name string) (*Card, error) {
	key := prism.CardKey(name)

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("card", name).Msg("Card cache read failed")
	}
	var stale *Card
	if entry != nil {
		var card Card
		if err := json.Unmarshal([]byte(entry.Data), &card); err != nil {
			c.logger.Warn().Err(err).Str("card", name).Msg("Discarding corrupt cache entry")
		} else if c.now().Sub(entry.FetchedAt) < c.ttl {
			return &card, nil
		} else {
			stale = &card
		}
	}

	card, err := c.api.NamedCard(ctx, name)
	if err != nil {
		if stale != nil && !IsNotFound(err) {
			c.logger.Warn().Err(err).Str("card", name).Msg("Scryfall unavailable, serving stale card")
			return stale, nil
		}
		return nil, err
	}

	data, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("failed to encode card %q: %w", name, err)
	}
	if err := c.cache.Upsert(ctx, &models.CardCacheEntry{
		CardKey:   key,
		Name:      card.Name,
		Data:      string(data),
		FetchedAt: c.now().UTC(),
	}); err != nil {
		c.logger.Warn().Err(err).Str("card", name).Msg("Card cache write failed")
	}
	return card, nil
}

// Evict removes cache entries older than the TTL.
func (c *CachedClient) Evict(ctx context.Context) (int64, error) {
	return c.cache.DeleteOlderThan(ctx, c.now().UTC().Add(-c.ttl))
}
