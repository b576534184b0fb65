package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for equipment persistence.
// The abstraction enables unit testing the session service without a
// database dependency.
type Repository interface {
	// GetByID retrieves a unit by its unique identifier.
	// Returns ErrNotFound if the unit does not exist.
	GetByID(ctx context.Context, id string) (*Equipment, error)

	// List retrieves all units ordered by name.
	List(ctx context.Context) ([]Equipment, error)

	// Create inserts a new unit. The ID is generated if empty.
	// Returns ErrCodeExists if the code is already taken.
	Create(ctx context.Context, eq *Equipment) error

	// TransitionTx performs the compare-and-swap status transition
	// inside the caller's transaction: the status changes to next only
	// if it still equals expected at commit time. On a lost race or a
	// stale expectation it re-reads the current status and returns the
	// typed failure the state machine defines for it.
	TransitionTx(ctx context.Context, tx *sql.Tx, id string, expected, next Status) (*Equipment, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed equipment repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a unit by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Equipment, error) {
	return scanEquipment(r.db.QueryRowContext(ctx,
		"SELECT id, name, code, device_id, status, created_at, updated_at FROM equipment WHERE id = ?",
		id,
	))
}

// List retrieves all units ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Equipment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, code, device_id, status, created_at, updated_at FROM equipment ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	defer rows.Close()

	var units []Equipment
	for rows.Next() {
		eq, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating equipment: %w", err)
	}

	if units == nil {
		units = []Equipment{}
	}
	return units, nil
}

// Create inserts a new unit. The ID is generated if empty and the
// status defaults to available.
func (r *SQLiteRepository) Create(ctx context.Context, eq *Equipment) error {
	if eq.ID == "" {
		eq.ID = "eq-" + uuid.NewString()[:8]
	}
	if eq.Status == "" {
		eq.Status = StatusAvailable
	}
	if _, err := ParseStatus(string(eq.Status)); err != nil {
		return err
	}

	now := time.Now().UTC()
	eq.CreatedAt = now
	eq.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO equipment (id, name, code, device_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		eq.ID, eq.Name, eq.Code, eq.DeviceID, string(eq.Status),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("inserting equipment: %w", err)
	}

	return nil
}

// TransitionTx performs the compare-and-swap status transition inside
// the caller's transaction.
//
// The UPDATE is guarded on the expected status, so two concurrent
// checkouts of the same unit cannot both succeed: the loser updates
// zero rows, re-reads the current status, and gets the typed failure
// for it (an *UnavailableError when checking out, ErrInvalidTransition
// when checking in).
func (r *SQLiteRepository) TransitionTx(ctx context.Context, tx *sql.Tx, id string, expected, next Status) (*Equipment, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := tx.ExecContext(ctx,
		"UPDATE equipment SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(next), now, id, string(expected),
	)
	if err != nil {
		return nil, fmt.Errorf("updating equipment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}

	eq, err := scanEquipment(tx.QueryRowContext(ctx,
		"SELECT id, name, code, device_id, status, created_at, updated_at FROM equipment WHERE id = ?",
		id,
	))
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		// Lost the race or the caller's view was stale. The state
		// machine decides which failure the observed status maps to.
		var terr error
		if expected == StatusAvailable {
			_, terr = eq.Status.Checkout()
		} else {
			_, terr = eq.Status.Checkin()
		}
		if terr == nil {
			// Status matches the transition's precondition but the
			// guarded update missed it; treat as a lost race.
			terr = &UnavailableError{Status: eq.Status}
		}
		return eq, terr
	}

	return eq, nil
}

// CountByStatus returns the number of units per status, for the fleet
// gauge exported at scrape time.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM equipment GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting equipment: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning equipment count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating equipment counts: %w", err)
	}

	return counts, nil
}

// scanEquipment scans a single row, mapping sql.ErrNoRows to ErrNotFound.
func scanEquipment(row *sql.Row) (*Equipment, error) {
	eq, err := scanEquipmentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return eq, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipmentRow(scanner rowScanner) (*Equipment, error) {
	var (
		eq        Equipment
		status    string
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&eq.ID, &eq.Name, &eq.Code, &eq.DeviceID, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning equipment: %w", err)
	}

	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("equipment %s: %w", eq.ID, err)
	}
	eq.Status = parsed

	eq.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	eq.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &eq, nil
}

// isUniqueConstraintError checks for a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint")
}
