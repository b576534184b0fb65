package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dudumsantos1976-design/power-lift-control/internal/equipment"
	"github.com/dudumsantos1976-design/power-lift-control/internal/operator"
	"github.com/dudumsantos1976-design/power-lift-control/internal/session"
)

// startSessionRequest is the body for POST /sessions.
type startSessionRequest struct {
	EquipmentID string `json:"equipment_id"`
	OperatorID  string `json:"operator_id"`
}

// handleStartSession checks out an equipment unit for an operator.
//
// A refused checkout maps to 409 with the blocking status in the
// message; a degraded device command does not change the status code,
// only the device field of the response.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.EquipmentID == "" || req.OperatorID == "" {
		writeBadRequest(w, "equipment_id and operator_id are required")
		return
	}

	res, err := s.sessions.StartSession(r.Context(), req.EquipmentID, req.OperatorID)
	if err != nil {
		uerr, unavailable := equipment.AsUnavailable(err)
		switch {
		case unavailable:
			writeError(w, http.StatusConflict, ErrCodeUnavailable,
				fmt.Sprintf("equipment is %s", uerr.Status))
		case errors.Is(err, equipment.ErrNotFound):
			writeNotFound(w, "equipment not found")
		case errors.Is(err, operator.ErrNotFound):
			writeNotFound(w, "operator not found")
		default:
			writeInternalError(w, "failed to start session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session":   res.Session,
		"equipment": res.Equipment,
		"device":    res.Dispatch,
	})
}

// handleEndSession closes a session and returns its unit to the pool.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.sessions.EndSession(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		case errors.Is(err, session.ErrAlreadyClosed):
			writeError(w, http.StatusConflict, ErrCodeAlreadyClosed, "session already closed")
		case errors.Is(err, equipment.ErrInvalidTransition):
			writeError(w, http.StatusConflict, ErrCodeInvalidTransition, "equipment is not in use")
		default:
			writeInternalError(w, "failed to end session")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":          res.Session,
		"equipment":        res.Equipment,
		"duration_seconds": res.Session.DurationSeconds,
		"device":           res.Dispatch,
	})
}

// handleGetSession returns a single ledger entry by ID.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.ledger.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeNotFound(w, "session not found")
			return
		}
		writeInternalError(w, "failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// handleOperatorSessions returns an operator's ledger entries, newest
// first.
func (s *Server) handleOperatorSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.operators.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			writeNotFound(w, "operator not found")
			return
		}
		writeInternalError(w, "failed to get operator")
		return
	}

	sessions, err := s.ledger.ListForOperator(r.Context(), id)
	if err != nil {
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions, "count": len(sessions)})
}
