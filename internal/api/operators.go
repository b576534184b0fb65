package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dudumsantos1976-design/power-lift-control/internal/operator"
)

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
}

// handleLogin resolves a username to an operator record.
//
// This is a floor directory lookup, not authentication: operators
// identify themselves by badge name and the system trusts them.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" {
		writeBadRequest(w, "username is required")
		return
	}

	op, err := s.operators.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			writeNotFound(w, "unknown username")
			return
		}
		writeInternalError(w, "failed to look up operator")
		return
	}

	writeJSON(w, http.StatusOK, op)
}

// signupRequest is the body for POST /auth/signup.
type signupRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// handleSignup registers a new operator in the directory.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	op, err := s.operators.Create(r.Context(), req.Username, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, operator.ErrInvalidUsername):
			writeBadRequest(w, "username is required")
		case errors.Is(err, operator.ErrDuplicateUsername):
			writeError(w, http.StatusConflict, ErrCodeDuplicateUsername, "username already taken")
		default:
			writeInternalError(w, "failed to create operator")
		}
		return
	}

	writeJSON(w, http.StatusCreated, op)
}
