package api

import (
	"encoding/json"
	"net/http"

	"github.com/dudumsantos1976-design/power-lift-control/internal/settings"
)

// handleGetSettings returns the broker settings. The password is never
// echoed; its JSON tag drops it from the encoding.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.BrokerConfig(r.Context())
	if err != nil {
		writeInternalError(w, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// updateSettingsRequest is the body for PUT /settings. Password is
// accepted on write only; leaving it empty keeps the stored value.
type updateSettingsRequest struct {
	URL         string `json:"url"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
}

// handleUpdateSettings stores new broker settings. They take effect on
// the next dispatched command; no restart is needed.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Port != 0 && (req.Port < 1 || req.Port > 65535) {
		writeBadRequest(w, "port must be between 1 and 65535")
		return
	}

	cfg := settings.BrokerConfig{
		URL:         req.URL,
		Port:        req.Port,
		UseTLS:      req.UseTLS,
		Username:    req.Username,
		Password:    req.Password,
		TopicPrefix: req.TopicPrefix,
	}
	if err := s.settings.UpdateBrokerConfig(r.Context(), cfg); err != nil {
		writeInternalError(w, "failed to update settings")
		return
	}

	updated, err := s.settings.BrokerConfig(r.Context())
	if err != nil {
		writeInternalError(w, "failed to reload settings")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
