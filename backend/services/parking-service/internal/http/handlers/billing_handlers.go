package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/service"
)

// BillingHandlers serves the billing view and payments.
type BillingHandlers struct {
	svc    *service.BillingService
	logger *zap.Logger
}

// NewBillingHandlers returns handler struct.
func NewBillingHandlers(svc *service.BillingService, logger *zap.Logger) *BillingHandlers {
	return &BillingHandlers{svc: svc, logger: logger}
}

// List handles GET /billing.
func (h *BillingHandlers) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.ListBilling(r.Context(), caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ForUser handles GET /billing/{username}.
func (h *BillingHandlers) ForUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.ListBillingForUser(r.Context(), caller, r.PathValue("username"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Pay handles POST /parking-lots/{id}/sessions/{sessionID}/payments.
func (h *BillingHandlers) Pay(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordPayment(r.Context(), r.PathValue("id"), r.PathValue("sessionID"), req.Amount, caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
