package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/service"
)

// SessionsHandlers serves the parking session endpoints.
type SessionsHandlers struct {
	svc    *service.SessionService
	logger *zap.Logger
}

// NewSessionsHandlers returns handler struct.
func NewSessionsHandlers(svc *service.SessionService, logger *zap.Logger) *SessionsHandlers {
	return &SessionsHandlers{svc: svc, logger: logger}
}

type plateRequest struct {
	LicensePlate string `json:"licenseplate"`
}

// Start handles POST /parking-lots/sessions/{id}/start.
func (h *SessionsHandlers) Start(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req plateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	record, err := h.svc.StartSession(r.Context(), r.PathValue("id"), req.LicensePlate, caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Stop handles PUT /parking-lots/sessions/{id}/stop.
func (h *SessionsHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req plateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	record, err := h.svc.StopSession(r.Context(), r.PathValue("id"), req.LicensePlate, caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// List handles GET /parking-lots/{id}/sessions.
func (h *SessionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	sessions, err := h.svc.ListSessions(r.Context(), r.PathValue("id"), caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
