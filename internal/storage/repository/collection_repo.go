package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codwats/prism/internal/storage/models"
)

// CollectionRepository handles database operations for collections.
type CollectionRepository interface {
	// Upsert inserts a collection or updates its name and timestamps.
	Upsert(ctx context.Context, c *models.Collection) error

	// GetByID retrieves a collection by its ID. Returns nil, nil if not found.
	GetByID(ctx context.Context, id string) (*models.Collection, error)

	// List retrieves all collections, most recently updated first.
	List(ctx context.Context) ([]*models.Collection, error)

	// Delete deletes a collection. Decks, cards, marks and snapshots cascade.
	// Returns false if no collection had the ID.
	Delete(ctx context.Context, id string) (bool, error)
}

type collectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db DBTX) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Upsert(ctx context.Context, c *models.Collection) error {
	query := `
		INSERT INTO collections (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `SELECT id, name, created_at, updated_at FROM collections WHERE id = ?`

	c := &models.Collection{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection by id: %w", err)
	}
	return c, nil
}

func (r *collectionRepository) List(ctx context.Context) ([]*models.Collection, error) {
	query := `SELECT id, name, created_at, updated_at FROM collections ORDER BY updated_at DESC, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Collection
	for rows.Next() {
		c := &models.Collection{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}
	return out, nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
