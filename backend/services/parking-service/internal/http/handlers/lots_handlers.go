package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/service"
)

// LotsHandlers serves the parking lot endpoints.
type LotsHandlers struct {
	svc    *service.LotService
	logger *zap.Logger
}

// NewLotsHandlers returns handler struct.
func NewLotsHandlers(svc *service.LotService, logger *zap.Logger) *LotsHandlers {
	return &LotsHandlers{svc: svc, logger: logger}
}

// List handles GET /parking-lots/.
func (h *LotsHandlers) List(w http.ResponseWriter, r *http.Request) {
	lots, err := h.svc.ListLots(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lots)
}

// Get handles GET /parking-lots/{id}.
func (h *LotsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	lot, err := h.svc.GetLot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lot)
}

// Create handles POST /parking-lots/.
func (h *LotsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var lot models.ParkingLot
	if !decodeJSON(w, r, &lot) {
		return
	}
	lot.ID = ""
	created, err := h.svc.CreateLot(r.Context(), lot, caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// Update handles PUT /parking-lots/{id}.
func (h *LotsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var patch models.ParkingLotPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.svc.UpdateLot(r.Context(), r.PathValue("id"), patch, caller)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
