package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codwats/prism/internal/storage/models"
)

const testSchema = `
	CREATE TABLE collections (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE decks (
		id TEXT PRIMARY KEY,
		collection_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		commander TEXT NOT NULL DEFAULT '',
		bracket INTEGER NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE,
		UNIQUE (collection_id, position)
	);

	CREATE TABLE deck_cards (
		deck_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (deck_id, seq),
		FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
	);

	CREATE TABLE marked_cards (
		collection_id TEXT NOT NULL,
		card_key TEXT NOT NULL,
		marked_at DATETIME NOT NULL,
		PRIMARY KEY (collection_id, card_key),
		FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
	);

	CREATE TABLE snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		deck_count INTEGER NOT NULL,
		card_count INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
	);

	CREATE TABLE card_cache (
		card_key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
`

// setupTestDB creates an in-memory database with the PRISM schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestCollection(t *testing.T, db *sql.DB, id, name string) *models.Collection {
	t.Helper()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &models.Collection{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := NewCollectionRepository(db).Upsert(context.Background(), c); err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	return c
}
