package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Runtime setting keys.
const (
	SettingCurrentGameID = "current_game_id"
	SettingChannelList   = "channel_list"
)

// SettingsRepository stores JSON-encoded runtime settings.
type SettingsRepository interface {
	// Get retrieves the JSON-encoded value. found is false for unknown keys.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// GetTyped unmarshals a setting into target. found is false for
	// unknown keys and target is left untouched.
	GetTyped(ctx context.Context, key string, target any) (found bool, err error)

	// Set stores a setting value. The value is JSON-encoded before storage.
	Set(ctx context.Context, key string, value any) error

	// GetAll retrieves all settings as a map.
	GetAll(ctx context.Context) (map[string]any, error)

	// Delete removes a setting.
	Delete(ctx context.Context, key string) error
}

type settingsRepository struct {
	db Querier
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db Querier) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *settingsRepository) GetTyped(ctx context.Context, key string, target any) (bool, error) {
	value, found, err := r.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return true, fmt.Errorf("failed to unmarshal setting %s: %w", key, err)
	}
	return true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(jsonValue), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) GetAll(ctx context.Context) (map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	settings := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}

		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			settings[key] = value
		} else {
			settings[key] = parsed
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
