package operator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for the operator directory.
type Repository interface {
	// FindByUsername looks up an operator by exact username.
	// Returns ErrNotFound when no operator matches.
	FindByUsername(ctx context.Context, username string) (*Operator, error)

	// GetByID retrieves an operator by their unique ID.
	GetByID(ctx context.Context, id string) (*Operator, error)

	// Create registers a new operator.
	// Returns ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, username, fullName string) (*Operator, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed operator directory.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindByUsername looks up an operator by exact, case-sensitive username.
func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (*Operator, error) {
	// SQLite TEXT comparison is case-sensitive by default; "MGarcia"
	// and "mgarcia" are distinct operators.
	return r.getOperator(ctx,
		"SELECT id, username, full_name, created_at FROM operators WHERE username = ?",
		username,
	)
}

// GetByID retrieves an operator by their unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Operator, error) {
	return r.getOperator(ctx,
		"SELECT id, username, full_name, created_at FROM operators WHERE id = ?",
		id,
	)
}

// Create registers a new operator with a generated ID.
func (r *SQLiteRepository) Create(ctx context.Context, username, fullName string) (*Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	op := &Operator{
		ID:        "opr-" + uuid.NewString()[:8],
		Username:  username,
		FullName:  fullName,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO operators (id, username, full_name, created_at) VALUES (?, ?, ?, ?)",
		op.ID, op.Username, op.FullName, op.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("inserting operator: %w", err)
	}

	return op, nil
}

func (r *SQLiteRepository) getOperator(ctx context.Context, query string, arg string) (*Operator, error) {
	var (
		op        Operator
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&op.ID, &op.Username, &op.FullName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying operator: %w", err)
	}

	op.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &op, nil
}
