package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/codwats/prism/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager moves a PRISM database between schema versions.
type MigrationManager struct {
	m *migrate.Migrate
}

// NewMigrationManager opens the SQLite file at dbPath for migration. The file is
// created when missing.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	files, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, sqliteURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &MigrationManager{m: m}, nil
}

// Migrate brings the database at dbPath to the newest schema.
func Migrate(dbPath string) (err error) {
	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	before, _, err := mgr.Version()
	if err != nil {
		return err
	}
	if err := mgr.Up(); err != nil {
		return err
	}
	after, _, err := mgr.Version()
	if err != nil {
		return err
	}
	if after != before {
		logging.Get("storage").Info().Uint("from", before).Uint("to", after).Str("path", dbPath).Msg("Database schema migrated")
	}
	return nil
}

// sqliteURL turns a file path into the sqlite:// URL the driver expects. Windows
// drive letters get a leading slash.
func sqliteURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}
	return "sqlite://" + p
}

// noChangeOK treats "already at that version" as success.
func noChangeOK(err error, action string) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// Up applies every pending migration.
func (mm *MigrationManager) Up() error {
	return noChangeOK(mm.m.Up(), "apply migrations")
}

// Down reverts every migration.
func (mm *MigrationManager) Down() error {
	return noChangeOK(mm.m.Down(), "roll back migrations")
}

// Steps applies n migrations, or reverts -n when n is negative.
func (mm *MigrationManager) Steps(n int) error {
	return noChangeOK(mm.m.Steps(n), "step migrations")
}

// Version returns the schema version and whether a migration failed halfway. An
// empty database is version 0.
func (mm *MigrationManager) Version() (uint, bool, error) {
	version, dirty, err := mm.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the source and database handles.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.m.Close()
	return errors.Join(srcErr, dbErr)
}
