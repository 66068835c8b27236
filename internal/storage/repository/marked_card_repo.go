package repository

import (
	"context"
	"fmt"
	"time"
)

// MarkedCardRepository stores which cards have been physically painted.
type MarkedCardRepository interface {
	// List returns the marked card keys of a collection, sorted.
	List(ctx context.Context, collectionID string) ([]string, error)

	// Replace sets the marked cards of a collection to exactly keys.
	Replace(ctx context.Context, collectionID string, keys []string, now time.Time) error
}

type markedCardRepository struct {
	db DBTX
}

// NewMarkedCardRepository creates a new marked card repository.
func NewMarkedCardRepository(db DBTX) MarkedCardRepository {
	return &markedCardRepository{db: db}
}

func (r *markedCardRepository) List(ctx context.Context, collectionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT card_key FROM marked_cards WHERE collection_id = ? ORDER BY card_key`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list marked cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan marked card: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating marked cards: %w", err)
	}
	return keys, nil
}

func (r *markedCardRepository) Replace(ctx context.Context, collectionID string, keys []string, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM marked_cards WHERE collection_id = ?`, collectionID); err != nil {
		return fmt.Errorf("failed to clear marked cards: %w", err)
	}

	query := `
		INSERT INTO marked_cards (collection_id, card_key, marked_at) VALUES (?, ?, ?)
		ON CONFLICT(collection_id, card_key) DO NOTHING
	`
	for _, key := range keys {
		if _, err := r.db.ExecContext(ctx, query, collectionID, key, now); err != nil {
			return fmt.Errorf("failed to mark card %q: %w", key, err)
		}
	}
	return nil
}
