package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dudumsantos1976-design/power-lift-control/internal/dispatch"
	"github.com/dudumsantos1976-design/power-lift-control/internal/equipment"
	"github.com/dudumsantos1976-design/power-lift-control/internal/operator"
)

// TxBeginner starts database transactions. Both *sql.DB and the
// database wrapper satisfy it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Notifier dispatches a power command after a lifecycle transition has
// committed. Its Result never influences the committed state.
type Notifier interface {
	Notify(ctx context.Context, deviceID string, action dispatch.Action) dispatch.Result
}

// OperatorStore is the subset of the operator repository the service
// needs.
type OperatorStore interface {
	GetByID(ctx context.Context, id string) (*operator.Operator, error)
}

// Logger is the logging surface the service needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Service drives the session lifecycle.
//
// StartSession and EndSession each run one transaction covering both
// the equipment status compare-and-swap and the ledger write, then
// dispatch the device command strictly after commit. The guarded
// UPDATE inside the transaction is the only concurrency control; two
// racing checkouts of the same unit resolve to one winner and one
// typed refusal.
type Service struct {
	db        TxBeginner
	equipment equipment.Repository
	sessions  Repository
	operators OperatorStore
	notifier  Notifier
	logger    Logger

	// now is swappable for duration tests.
	now func() time.Time
}

// NewService creates a session Service.
func NewService(db TxBeginner, eq equipment.Repository, sessions Repository, operators OperatorStore, notifier Notifier, logger Logger) *Service {
	return &Service{
		db:        db,
		equipment: eq,
		sessions:  sessions,
		operators: operators,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// StartResult is the outcome of a checkout: the committed state plus
// the best-effort command delivery report.
type StartResult struct {
	Session   *Session             `json:"session"`
	Equipment *equipment.Equipment `json:"equipment"`
	Dispatch  dispatch.Result      `json:"dispatch"`
}

// EndResult is the outcome of ending a session.
type EndResult struct {
	Session   *Session             `json:"session"`
	Equipment *equipment.Equipment `json:"equipment"`
	Dispatch  dispatch.Result      `json:"dispatch"`
}

// StartSession checks out an equipment unit for an operator.
//
// The unit moves available -> in_use and an open ledger entry is
// appended, atomically. Failures return typed errors from the
// equipment and operator packages (equipment.ErrUnavailable and
// friends); the device activation is attempted only after the commit
// and its outcome is reported in the result, never as an error.
func (s *Service) StartSession(ctx context.Context, equipmentID, operatorID string) (*StartResult, error) {
	if _, err := s.operators.GetByID(ctx, operatorID); err != nil {
		return nil, fmt.Errorf("resolving operator: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	eq, err := s.equipment.TransitionTx(ctx, tx, equipmentID, equipment.StatusAvailable, equipment.StatusInUse)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		EquipmentID: equipmentID,
		OperatorID:  operatorID,
		StartTime:   s.now().UTC(),
	}
	if err := s.sessions.InsertTx(ctx, tx, sess); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing session start: %w", err)
	}

	s.logger.Info("session started",
		"session_id", sess.ID,
		"equipment_id", equipmentID,
		"operator_id", operatorID,
	)

	return &StartResult{
		Session:   sess,
		Equipment: eq,
		Dispatch:  s.notifier.Notify(ctx, eq.DeviceID, dispatch.ActionActivate),
	}, nil
}

// EndSession closes a session and returns its equipment to the
// available pool.
//
// Ending twice returns ErrAlreadyClosed and leaves the first close
// untouched. The recorded duration is the whole-second span of the
// session, clamped to zero if the clock ran backwards between start
// and end.
func (s *Service) EndSession(ctx context.Context, sessionID string) (*EndResult, error) {
	current, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !current.Open() {
		return nil, ErrAlreadyClosed
	}

	end := s.now().UTC()
	duration := int64(end.Sub(current.StartTime).Seconds())
	if duration < 0 {
		s.logger.Warn("session end precedes start, clamping duration to zero",
			"session_id", sessionID,
			"start_time", current.StartTime,
			"end_time", end,
		)
		duration = 0
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	closed, err := s.sessions.CloseTx(ctx, tx, sessionID, end, duration)
	if err != nil {
		return nil, err
	}

	eq, err := s.equipment.TransitionTx(ctx, tx, closed.EquipmentID, equipment.StatusInUse, equipment.StatusAvailable)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing session end: %w", err)
	}

	s.logger.Info("session ended",
		"session_id", sessionID,
		"equipment_id", closed.EquipmentID,
		"duration_seconds", duration,
	)

	return &EndResult{
		Session:   closed,
		Equipment: eq,
		Dispatch:  s.notifier.Notify(ctx, eq.DeviceID, dispatch.ActionDeactivate),
	}, nil
}

// OpenSession returns the running session for an equipment unit, or
// ErrNoOpenSession when the unit is idle.
func (s *Service) OpenSession(ctx context.Context, equipmentID string) (*Session, error) {
	if _, err := s.equipment.GetByID(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.sessions.OpenForEquipment(ctx, equipmentID)
}
