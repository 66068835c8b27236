package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/codwats/prism/internal/storage/repository"
)

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Collections repository.CollectionRepository
	Decks       repository.DeckRepository
	Marks       repository.MarkedCardRepository
	Snapshots   repository.SnapshotRepository
	CardCache   repository.CardCacheRepository
	Settings    repository.SettingsRepository
}

// NewRepositories binds all repositories to db, which may be a *sql.DB or a *sql.Tx.
func NewRepositories(db repository.DBTX) *Repositories {
	return &Repositories{
		Collections: repository.NewCollectionRepository(db),
		Decks:       repository.NewDeckRepository(db),
		Marks:       repository.NewMarkedCardRepository(db),
		Snapshots:   repository.NewSnapshotRepository(db),
		CardCache:   repository.NewCardCacheRepository(db),
		Settings:    repository.NewSettingsRepository(db),
	}
}

// TxFunc is a function that runs within a transaction.
type TxFunc func(repos *Repositories) error

// WithTransaction runs fn with repositories bound to a new transaction.
// It commits on success and rolls back on error. If fn panics, the transaction is
// rolled back and the panic is re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	var tx *sql.Tx
	tx, err = db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			if err = tx.Commit(); err != nil {
				err = fmt.Errorf("failed to commit transaction: %w", err)
			}
		}
	}()

	err = fn(NewRepositories(tx))
	return err
}
