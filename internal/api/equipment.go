package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dudumsantos1976-design/power-lift-control/internal/equipment"
	"github.com/dudumsantos1976-design/power-lift-control/internal/session"
)

// handleListEquipment returns all equipment units ordered by name.
func (s *Server) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	units, err := s.equipment.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list equipment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipment": units, "count": len(units)})
}

// handleGetEquipment returns a single equipment unit by ID.
func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	eq, err := s.equipment.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, equipment.ErrNotFound) {
			writeNotFound(w, "equipment not found")
			return
		}
		writeInternalError(w, "failed to get equipment")
		return
	}

	writeJSON(w, http.StatusOK, eq)
}

// createEquipmentRequest is the body for POST /equipment.
type createEquipmentRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DeviceID string `json:"device_id"`
}

// handleCreateEquipment registers a new equipment unit, available by
// default.
func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Code == "" {
		writeBadRequest(w, "name and code are required")
		return
	}

	eq := &equipment.Equipment{
		Name:     req.Name,
		Code:     req.Code,
		DeviceID: req.DeviceID,
	}
	if err := s.equipment.Create(r.Context(), eq); err != nil {
		if errors.Is(err, equipment.ErrCodeExists) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "equipment code already in use")
			return
		}
		writeInternalError(w, "failed to create equipment")
		return
	}

	writeJSON(w, http.StatusCreated, eq)
}

// handleGetOpenSession returns the running session for a unit, or 404
// when the unit is idle.
func (s *Server) handleGetOpenSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	open, err := s.sessions.OpenSession(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, equipment.ErrNotFound):
			writeNotFound(w, "equipment not found")
		case errors.Is(err, session.ErrNoOpenSession):
			writeNotFound(w, "no open session for equipment")
		default:
			writeInternalError(w, "failed to get open session")
		}
		return
	}

	writeJSON(w, http.StatusOK, open)
}
