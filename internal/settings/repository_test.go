package settings

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE app_settings (
			key         TEXT PRIMARY KEY,
			value       TEXT,
			description TEXT,
			updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		INSERT INTO app_settings (key, value) VALUES
			('mqtt_broker_url',   NULL),
			('mqtt_broker_port',  NULL),
			('mqtt_use_tls',      NULL),
			('mqtt_username',     NULL),
			('mqtt_password',     NULL),
			('mqtt_topic_prefix', NULL);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestBrokerConfig_Defaults(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil)

	cfg, err := repo.BrokerConfig(context.Background())
	if err != nil {
		t.Fatalf("BrokerConfig: %v", err)
	}

	if cfg.URL != DefaultBrokerURL {
		t.Errorf("URL = %q, want default %q", cfg.URL, DefaultBrokerURL)
	}
	if cfg.Port != DefaultBrokerPort {
		t.Errorf("Port = %d, want default %d", cfg.Port, DefaultBrokerPort)
	}
	if cfg.UseTLS {
		t.Error("UseTLS should default to false")
	}
	if cfg.TopicPrefix != DefaultTopicPrefix {
		t.Errorf("TopicPrefix = %q, want default %q", cfg.TopicPrefix, DefaultTopicPrefix)
	}
}

func TestBrokerConfig_StoredValues(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)

	stmts := map[string]string{
		"mqtt_broker_url":   "mqtt.example.com",
		"mqtt_broker_port":  "8883",
		"mqtt_use_tls":      "true",
		"mqtt_username":     "fleet",
		"mqtt_password":     "secret",
		"mqtt_topic_prefix": "warehouse/",
	}
	for key, value := range stmts {
		if _, err := db.Exec("UPDATE app_settings SET value = ? WHERE key = ?", value, key); err != nil {
			t.Fatalf("seeding %s: %v", key, err)
		}
	}

	cfg, err := repo.BrokerConfig(context.Background())
	if err != nil {
		t.Fatalf("BrokerConfig: %v", err)
	}

	if cfg.URL != "mqtt.example.com" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Port != 8883 {
		t.Errorf("Port = %d, want 8883", cfg.Port)
	}
	if !cfg.UseTLS {
		t.Error("UseTLS should be true")
	}
	if cfg.Username != "fleet" || cfg.Password != "secret" {
		t.Errorf("credentials = %q/%q", cfg.Username, cfg.Password)
	}
	if cfg.TopicPrefix != "warehouse/" {
		t.Errorf("TopicPrefix = %q", cfg.TopicPrefix)
	}
}

func TestBrokerConfig_MalformedPortFallsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)

	if _, err := db.Exec("UPDATE app_settings SET value = 'not-a-port' WHERE key = 'mqtt_broker_port'"); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	cfg, err := repo.BrokerConfig(context.Background())
	if err != nil {
		t.Fatalf("BrokerConfig: %v", err)
	}
	if cfg.Port != DefaultBrokerPort {
		t.Errorf("Port = %d, want fallback to default %d", cfg.Port, DefaultBrokerPort)
	}
}

func TestUpdateBrokerConfig_RoundTrip(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil)
	ctx := context.Background()

	in := BrokerConfig{
		URL:         "broker.local",
		Port:        1884,
		UseTLS:      true,
		Username:    "ops",
		Password:    "hunter2",
		TopicPrefix: "fleet/",
	}
	if err := repo.UpdateBrokerConfig(ctx, in); err != nil {
		t.Fatalf("UpdateBrokerConfig: %v", err)
	}

	got, err := repo.BrokerConfig(ctx)
	if err != nil {
		t.Fatalf("BrokerConfig: %v", err)
	}
	if got != in {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, in)
	}
}

func TestUpdateBrokerConfig_EmptyPasswordPreserved(t *testing.T) {
	repo := NewRepository(setupTestDB(t), nil)
	ctx := context.Background()

	first := BrokerConfig{URL: "broker.local", Port: 1883, TopicPrefix: "fleet/", Password: "keepme"}
	if err := repo.UpdateBrokerConfig(ctx, first); err != nil {
		t.Fatalf("UpdateBrokerConfig: %v", err)
	}

	// Second update without a password must not clear the stored one.
	second := first
	second.Password = ""
	second.URL = "broker.other"
	if err := repo.UpdateBrokerConfig(ctx, second); err != nil {
		t.Fatalf("UpdateBrokerConfig: %v", err)
	}

	got, err := repo.BrokerConfig(ctx)
	if err != nil {
		t.Fatalf("BrokerConfig: %v", err)
	}
	if got.Password != "keepme" {
		t.Errorf("Password = %q, want preserved %q", got.Password, "keepme")
	}
	if got.URL != "broker.other" {
		t.Errorf("URL = %q, want updated", got.URL)
	}
}
