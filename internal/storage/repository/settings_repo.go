package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSettingNotFound is returned by SettingsRepository.Get for unknown keys.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository stores small JSON values by key, such as the collection the
// CLI currently works on.
type SettingsRepository interface {
	// Get decodes the value stored under key into target.
	Get(ctx context.Context, key string, target any) error

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

type settingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string, target any) error {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	case err != nil:
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
