package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for session ledger persistence.
//
// The Tx variants run inside the caller's transaction so the ledger
// write and the equipment status transition commit or roll back as one
// unit.
type Repository interface {
	// InsertTx appends a new open session to the ledger. The ID and
	// StartTime are generated if unset.
	InsertTx(ctx context.Context, tx *sql.Tx, s *Session) error

	// CloseTx stamps end time and duration on an open session. The
	// update is guarded on the session still being open; a second
	// close returns ErrAlreadyClosed and leaves the first untouched.
	CloseTx(ctx context.Context, tx *sql.Tx, id string, endTime time.Time, durationSeconds int64) (*Session, error)

	// GetByID retrieves a session. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Session, error)

	// OpenForEquipment returns the open session for a unit, or
	// ErrNoOpenSession when the unit is idle.
	OpenForEquipment(ctx context.Context, equipmentID string) (*Session, error)

	// ListForOperator returns an operator's sessions, newest first.
	ListForOperator(ctx context.Context, operatorID string) ([]Session, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed session repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sessionColumns = "id, equipment_id, operator_id, start_time, end_time, duration_seconds"

// InsertTx appends a new open session to the ledger.
func (r *SQLiteRepository) InsertTx(ctx context.Context, tx *sql.Tx, s *Session) error {
	if s.ID == "" {
		s.ID = "ses-" + uuid.NewString()[:8]
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, equipment_id, operator_id, start_time)
		 VALUES (?, ?, ?, ?)`,
		s.ID, s.EquipmentID, s.OperatorID, s.StartTime.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// CloseTx stamps end time and duration on an open session.
func (r *SQLiteRepository) CloseTx(ctx context.Context, tx *sql.Tx, id string, endTime time.Time, durationSeconds int64) (*Session, error) {
	result, err := tx.ExecContext(ctx,
		"UPDATE sessions SET end_time = ?, duration_seconds = ? WHERE id = ? AND end_time IS NULL",
		endTime.UTC().Format(time.RFC3339), durationSeconds, id,
	)
	if err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}

	s, err := scanSession(tx.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		// The row exists but the guard matched nothing: it was
		// already closed.
		return s, ErrAlreadyClosed
	}

	return s, nil
}

// GetByID retrieves a session by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
}

// OpenForEquipment returns the open session for a unit.
func (r *SQLiteRepository) OpenForEquipment(ctx context.Context, equipmentID string) (*Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE equipment_id = ? AND end_time IS NULL",
		equipmentID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoOpenSession
	}
	return s, err
}

// ListForOperator returns an operator's sessions, newest first.
func (r *SQLiteRepository) ListForOperator(ctx context.Context, operatorID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE operator_id = ? ORDER BY start_time DESC",
		operatorID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// scanSession scans a single row, mapping sql.ErrNoRows to ErrNotFound.
func scanSession(row *sql.Row) (*Session, error) {
	s, err := scanSessionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionRow(scanner rowScanner) (*Session, error) {
	var (
		s         Session
		startTime string
		endTime   sql.NullString
		duration  sql.NullInt64
	)
	if err := scanner.Scan(&s.ID, &s.EquipmentID, &s.OperatorID, &startTime, &endTime, &duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.StartTime, _ = time.Parse(time.RFC3339, startTime) //nolint:errcheck // format is controlled
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String) //nolint:errcheck // format is controlled
		s.EndTime = &t
	}
	if duration.Valid {
		d := duration.Int64
		s.DurationSeconds = &d
	}

	return &s, nil
}
