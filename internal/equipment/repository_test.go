package equipment

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the equipment table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

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

		INSERT INTO equipment (id, name, code, device_id, status) VALUES
			('eq-01', 'Forklift 1', 'FL-01', 'esp32-aa01', 'available'),
			('eq-02', 'Forklift 2', 'FL-02', 'esp32-aa02', 'in_use'),
			('eq-03', 'Forklift 3', 'FL-03', 'esp32-aa03', 'maintenance');
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

// inTx runs fn inside a transaction and commits it.
func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return nil
}

func TestGetByID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	eq, err := repo.GetByID(context.Background(), "eq-01")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if eq.Name != "Forklift 1" {
		t.Errorf("Name = %q, want %q", eq.Name, "Forklift 1")
	}
	if eq.DeviceID != "esp32-aa01" {
		t.Errorf("DeviceID = %q, want %q", eq.DeviceID, "esp32-aa01")
	}
	if eq.Status != StatusAvailable {
		t.Errorf("Status = %q, want %q", eq.Status, StatusAvailable)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "eq-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID: error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	units, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}
	// Ordered by name
	if units[0].Code != "FL-01" || units[2].Code != "FL-03" {
		t.Errorf("unexpected ordering: %q, %q, %q", units[0].Code, units[1].Code, units[2].Code)
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	eq := &Equipment{Name: "Forklift 4", Code: "FL-04", DeviceID: "esp32-aa04"}
	if err := repo.Create(context.Background(), eq); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if eq.ID == "" {
		t.Error("Create should generate an ID")
	}
	if eq.Status != StatusAvailable {
		t.Errorf("Status = %q, want default available", eq.Status)
	}

	got, err := repo.GetByID(context.Background(), eq.ID)
	if err != nil {
		t.Fatalf("GetByID after Create: %v", err)
	}
	if got.Code != "FL-04" {
		t.Errorf("Code = %q, want FL-04", got.Code)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.Create(context.Background(), &Equipment{Name: "Dup", Code: "FL-01", DeviceID: "esp32-x"})
	if !errors.Is(err, ErrCodeExists) {
		t.Errorf("Create duplicate code: error = %v, want ErrCodeExists", err)
	}
}

func TestTransitionTx_Checkout(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := inTx(t, db, func(tx *sql.Tx) error {
		eq, err := repo.TransitionTx(ctx, tx, "eq-01", StatusAvailable, StatusInUse)
		if err != nil {
			return err
		}
		if eq.Status != StatusInUse {
			t.Errorf("Status after transition = %q, want in_use", eq.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TransitionTx: %v", err)
	}

	eq, err := repo.GetByID(ctx, "eq-01")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if eq.Status != StatusInUse {
		t.Errorf("committed status = %q, want in_use", eq.Status)
	}
}

func TestTransitionTx_CheckoutInUse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.TransitionTx(ctx, tx, "eq-02", StatusAvailable, StatusInUse)
		return err
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("checkout of in_use unit: error = %v, want ErrUnavailable", err)
	}
	ue, ok := AsUnavailable(err)
	if !ok || ue.Status != StatusInUse {
		t.Errorf("UnavailableError.Status = %v, want in_use", ue)
	}
}

func TestTransitionTx_CheckoutMaintenance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.TransitionTx(ctx, tx, "eq-03", StatusAvailable, StatusInUse)
		return err
	})
	ue, ok := AsUnavailable(err)
	if !ok {
		t.Fatalf("checkout of maintenance unit: error = %v, want *UnavailableError", err)
	}
	if ue.Status != StatusMaintenance {
		t.Errorf("UnavailableError.Status = %q, want maintenance", ue.Status)
	}
}

func TestTransitionTx_CheckinNotInUse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.TransitionTx(ctx, tx, "eq-01", StatusInUse, StatusAvailable)
		return err
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("checkin of available unit: error = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionTx_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.TransitionTx(ctx, tx, "eq-missing", StatusAvailable, StatusInUse)
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("transition of missing unit: error = %v, want ErrNotFound", err)
	}
}
