package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/service"
)

// AuthHandlers serves account and token endpoints.
type AuthHandlers struct {
	svc    *service.AuthService
	logger *zap.Logger
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(svc *service.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{svc: svc, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
}

// Register handles POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: "User registered", SessionToken: token})
}

// Login handles POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: "User logged in", SessionToken: token})
}

// Logout handles POST /logout. The token comes from the body, or the Authorization header
// when the body carries none.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	token := req.Token
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	if err := h.svc.Logout(token); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}
