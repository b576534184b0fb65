package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the full
// schema the ledger touches.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE equipment (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			code        TEXT NOT NULL UNIQUE,
			device_id   TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'available'
			            CHECK (status IN ('available', 'in_use', 'maintenance')),
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE operators (
			id          TEXT PRIMARY KEY,
			username    TEXT NOT NULL UNIQUE,
			full_name   TEXT NOT NULL,
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE sessions (
			id               TEXT PRIMARY KEY,
			equipment_id     TEXT NOT NULL,
			operator_id      TEXT NOT NULL,
			start_time       TEXT NOT NULL,
			end_time         TEXT,
			duration_seconds INTEGER,
			FOREIGN KEY (equipment_id) REFERENCES equipment(id),
			FOREIGN KEY (operator_id) REFERENCES operators(id)
		) STRICT;

		CREATE UNIQUE INDEX sessions_open_per_equipment
			ON sessions (equipment_id) WHERE end_time IS NULL;

		INSERT INTO equipment (id, name, code, device_id, status) VALUES
			('eq-01', 'Forklift 1', 'FL-01', 'esp32-aa01', 'available'),
			('eq-02', 'Forklift 2', 'FL-02', 'esp32-aa02', 'in_use');

		INSERT INTO operators (id, username, full_name) VALUES
			('opr-01', 'mgarcia', 'Maria Garcia'),
			('opr-02', 'jchen', 'Jin Chen');
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

// insertSession writes a session directly, bypassing the service.
func insertSession(t *testing.T, db *sql.DB, repo *SQLiteRepository, s *Session) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.InsertTx(context.Background(), tx, s); err != nil {
		tx.Rollback() //nolint:errcheck
		t.Fatalf("InsertTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	s := &Session{EquipmentID: "eq-01", OperatorID: "opr-01"}
	insertSession(t, db, repo, s)

	if s.ID == "" {
		t.Fatal("InsertTx should generate an ID")
	}
	if s.StartTime.IsZero() {
		t.Fatal("InsertTx should stamp a start time")
	}

	got, err := repo.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.EquipmentID != "eq-01" || got.OperatorID != "opr-01" {
		t.Errorf("got %+v, want eq-01/opr-01", got)
	}
	if !got.Open() {
		t.Error("freshly inserted session should be open")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "ses-nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCloseTx(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := &Session{EquipmentID: "eq-01", OperatorID: "opr-01", StartTime: start}
	insertSession(t, db, repo, s)

	end := start.Add(125 * time.Second)
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	closed, err := repo.CloseTx(context.Background(), tx, s.ID, end, 125)
	if err != nil {
		t.Fatalf("CloseTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if closed.Open() {
		t.Fatal("closed session should not be open")
	}
	if closed.DurationSeconds == nil || *closed.DurationSeconds != 125 {
		t.Errorf("DurationSeconds = %v, want 125", closed.DurationSeconds)
	}
	if !closed.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", closed.EndTime, end)
	}
}

func TestCloseTx_AlreadyClosed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	s := &Session{EquipmentID: "eq-01", OperatorID: "opr-01"}
	insertSession(t, db, repo, s)

	firstEnd := time.Now().UTC()
	tx, _ := db.Begin()
	if _, err := repo.CloseTx(context.Background(), tx, s.ID, firstEnd, 10); err != nil {
		t.Fatalf("first CloseTx: %v", err)
	}
	tx.Commit() //nolint:errcheck

	tx2, _ := db.Begin()
	defer tx2.Rollback() //nolint:errcheck
	got, err := repo.CloseTx(context.Background(), tx2, s.ID, firstEnd.Add(time.Hour), 999)
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("second CloseTx error = %v, want ErrAlreadyClosed", err)
	}

	// The first close must stand untouched.
	if got.DurationSeconds == nil || *got.DurationSeconds != 10 {
		t.Errorf("DurationSeconds = %v, want the original 10", got.DurationSeconds)
	}
}

func TestCloseTx_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	tx, _ := db.Begin()
	defer tx.Rollback() //nolint:errcheck
	_, err := repo.CloseTx(context.Background(), tx, "ses-nope", time.Now(), 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestOpenForEquipment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	s := &Session{EquipmentID: "eq-02", OperatorID: "opr-02"}
	insertSession(t, db, repo, s)

	got, err := repo.OpenForEquipment(context.Background(), "eq-02")
	if err != nil {
		t.Fatalf("OpenForEquipment: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("ID = %q, want %q", got.ID, s.ID)
	}

	_, err = repo.OpenForEquipment(context.Background(), "eq-01")
	if !errors.Is(err, ErrNoOpenSession) {
		t.Errorf("idle equipment error = %v, want ErrNoOpenSession", err)
	}
}

func TestOpenSessionUniquePerEquipment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	insertSession(t, db, repo, &Session{EquipmentID: "eq-01", OperatorID: "opr-01"})

	// The partial unique index is the backstop behind the status
	// compare-and-swap: a second open entry must be impossible.
	tx, _ := db.Begin()
	defer tx.Rollback() //nolint:errcheck
	err := repo.InsertTx(context.Background(), tx, &Session{EquipmentID: "eq-01", OperatorID: "opr-02"})
	if err == nil {
		t.Fatal("second open session for the same equipment should violate the unique index")
	}
}

func TestListForOperator(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	early := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)

	first := &Session{EquipmentID: "eq-01", OperatorID: "opr-01", StartTime: early}
	insertSession(t, db, repo, first)

	tx, _ := db.Begin()
	if _, err := repo.CloseTx(context.Background(), tx, first.ID, early.Add(time.Hour), 3600); err != nil {
		t.Fatalf("CloseTx: %v", err)
	}
	tx.Commit() //nolint:errcheck

	second := &Session{EquipmentID: "eq-01", OperatorID: "opr-01", StartTime: late}
	insertSession(t, db, repo, second)

	insertSession(t, db, repo, &Session{EquipmentID: "eq-02", OperatorID: "opr-02"})

	got, err := repo.ListForOperator(context.Background(), "opr-01")
	if err != nil {
		t.Fatalf("ListForOperator: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("newest first: got[0].ID = %q, want %q", got[0].ID, second.ID)
	}

	empty, err := repo.ListForOperator(context.Background(), "opr-nope")
	if err != nil {
		t.Fatalf("ListForOperator: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("unknown operator should yield an empty slice, got %v", empty)
	}
}
