package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codwats/prism/internal/storage/models"
)

// CardCacheRepository caches card lookups keyed by normalized card name.
type CardCacheRepository interface {
	// Get returns a cached entry. Returns nil, nil if the card is not cached.
	Get(ctx context.Context, key string) (*models.CardCacheEntry, error)

	// Upsert stores or refreshes an entry.
	Upsert(ctx context.Context, entry *models.CardCacheEntry) error

	// DeleteOlderThan evicts entries fetched before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type cardCacheRepository struct {
	db DBTX
}

// NewCardCacheRepository creates a new card cache repository.
func NewCardCacheRepository(db DBTX) CardCacheRepository {
	return &cardCacheRepository{db: db}
}

func (r *cardCacheRepository) Get(ctx context.Context, key string) (*models.CardCacheEntry, error) {
	e := &models.CardCacheEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT card_key, name, data, fetched_at FROM card_cache WHERE card_key = ?`, key,
	).Scan(&e.CardKey, &e.Name, &e.Data, &e.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached card: %w", err)
	}
	return e, nil
}

func (r *cardCacheRepository) Upsert(ctx context.Context, entry *models.CardCacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO card_cache (card_key, name, data, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(card_key) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, entry.CardKey, entry.Name, entry.Data, entry.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to cache card: %w", err)
	}
	return nil
}

func (r *cardCacheRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM card_cache WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to evict cached cards: %w", err)
	}
	return res.RowsAffected()
}
