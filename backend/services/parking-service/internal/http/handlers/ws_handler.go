package handlers

import (
	"net/http"

	"parkinglot/backend/services/parking-service/internal/events"
)

// NewSessionFeedHandler returns GET /ws/sessions handler.
func NewSessionFeedHandler(hub *events.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identity(w, r)
		if !ok {
			return
		}
		hub.ServeWS(w, r, caller)
	}
}
