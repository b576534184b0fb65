package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Logger is the minimal logging interface the repository needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Repository reads and writes persisted application settings.
//
// The broker configuration is resolved fresh on every call so that a
// settings change takes effect on the next dispatched command without
// a restart, mirroring how the reference system re-reads its settings
// table per invocation.
type Repository struct {
	db     *sql.DB
	logger Logger
}

// NewRepository creates a settings repository. logger may be nil.
func NewRepository(db *sql.DB, logger Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// BrokerConfig assembles the broker configuration from app_settings,
// falling back to the documented defaults for unset keys. A malformed
// port value falls back to the default with a warning rather than
// failing the dispatch.
func (r *Repository) BrokerConfig(ctx context.Context) (BrokerConfig, error) {
	cfg := defaultBrokerConfig()

	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM app_settings WHERE value IS NOT NULL AND value != ''")
	if err != nil {
		return cfg, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, fmt.Errorf("scanning setting: %w", err)
		}

		switch key {
		case KeyBrokerURL:
			cfg.URL = value
		case KeyBrokerPort:
			port, err := strconv.Atoi(value)
			if err != nil || port < 1 || port > 65535 {
				if r.logger != nil {
					r.logger.Warn("ignoring malformed broker port setting", "value", value)
				}
				continue
			}
			cfg.Port = port
		case KeyUseTLS:
			cfg.UseTLS = value == "true"
		case KeyUsername:
			cfg.Username = value
		case KeyPassword:
			cfg.Password = value
		case KeyTopicPrefix:
			cfg.TopicPrefix = value
		}
	}
	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("iterating settings: %w", err)
	}

	return cfg, nil
}

// UpdateBrokerConfig persists the given broker configuration.
// An empty password leaves the stored password untouched, so the API
// can round-trip the config without ever echoing the secret.
func (r *Repository) UpdateBrokerConfig(ctx context.Context, cfg BrokerConfig) error {
	values := map[string]string{
		KeyBrokerURL:   cfg.URL,
		KeyBrokerPort:  strconv.Itoa(cfg.Port),
		KeyUseTLS:      strconv.FormatBool(cfg.UseTLS),
		KeyUsername:    cfg.Username,
		KeyTopicPrefix: cfg.TopicPrefix,
	}
	if cfg.Password != "" {
		values[KeyPassword] = cfg.Password
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		); err != nil {
			return fmt.Errorf("updating setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}
