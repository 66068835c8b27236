package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codwats/prism/internal/storage/models"
)

// SnapshotRepository stores processing results of a collection.
type SnapshotRepository interface {
	// Create inserts a snapshot and sets its ID.
	Create(ctx context.Context, s *models.Snapshot) error

	// Latest returns the newest snapshot of a collection. Returns nil, nil if none.
	Latest(ctx context.Context, collectionID string) (*models.Snapshot, error)

	// List returns up to limit snapshots of a collection, newest first, without Data.
	// A limit <= 0 returns all of them.
	List(ctx context.Context, collectionID string, limit int) ([]*models.Snapshot, error)

	// Prune deletes all but the newest keep snapshots and returns how many were removed.
	Prune(ctx context.Context, collectionID string, keep int) (int64, error)

	// DeleteByCollection removes every snapshot of a collection.
	DeleteByCollection(ctx context.Context, collectionID string) error
}

type snapshotRepository struct {
	db DBTX
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db DBTX) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *models.Snapshot) error {
	query := `
		INSERT INTO snapshots (collection_id, fingerprint, deck_count, card_count, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		s.CollectionID,
		s.Fingerprint,
		s.DeckCount,
		s.CardCount,
		s.Data,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get snapshot id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *snapshotRepository) Latest(ctx context.Context, collectionID string) (*models.Snapshot, error) {
	query := `
		SELECT id, collection_id, fingerprint, deck_count, card_count, data, created_at
		FROM snapshots
		WHERE collection_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	s := &models.Snapshot{}
	err := r.db.QueryRowContext(ctx, query, collectionID).Scan(
		&s.ID,
		&s.CollectionID,
		&s.Fingerprint,
		&s.DeckCount,
		&s.CardCount,
		&s.Data,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return s, nil
}

func (r *snapshotRepository) List(ctx context.Context, collectionID string, limit int) ([]*models.Snapshot, error) {
	query := `
		SELECT id, collection_id, fingerprint, deck_count, card_count, created_at
		FROM snapshots
		WHERE collection_id = ?
		ORDER BY id DESC
	`
	args := []interface{}{collectionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Snapshot
	for rows.Next() {
		s := &models.Snapshot{}
		if err := rows.Scan(&s.ID, &s.CollectionID, &s.Fingerprint, &s.DeckCount, &s.CardCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

func (r *snapshotRepository) Prune(ctx context.Context, collectionID string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE collection_id = ?
		  AND id NOT IN (
			SELECT id FROM snapshots WHERE collection_id = ? ORDER BY id DESC LIMIT ?
		  )
	`, collectionID, collectionID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (r *snapshotRepository) DeleteByCollection(ctx context.Context, collectionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE collection_id = ?`, collectionID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
