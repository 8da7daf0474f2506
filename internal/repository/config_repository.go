package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/models"
)

// ConfigRepository reads and writes the school_config key/value table.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository constructs a ConfigRepository.
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get returns the value for a key, or empty string when the key is absent.
func (r *ConfigRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM school_config WHERE key = $1`
	var value string
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get config %s: %w", key, err)
	}
	return value, nil
}

// Set upserts a key/value pair.
func (r *ConfigRepository) Set(ctx context.Context, entry models.ConfigEntry) error {
	const query = `INSERT INTO school_config (key, value) VALUES (:key, :value)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("set config %s: %w", entry.Key, err)
	}
	return nil
}

// SchoolType resolves the configured school type, defaulting to the
// eight-slot high-school grid when unset.
func (r *ConfigRepository) SchoolType(ctx context.Context) (models.SchoolType, error) {
	value, err := r.Get(ctx, models.ConfigKeySchoolType)
	if err != nil {
		return "", err
	}
	if value == "" {
		return models.SchoolHigh, nil
	}
	return models.SchoolType(value), nil
}
