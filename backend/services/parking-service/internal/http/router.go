package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/http/middleware"
)

// Routes groups handlers.
type Routes struct {
	Health  http.HandlerFunc
	Metrics http.Handler

	Register http.HandlerFunc
	Login    http.HandlerFunc
	Logout   http.HandlerFunc

	ListLots        http.HandlerFunc
	GetLot          http.HandlerFunc
	CreateLot       http.HandlerFunc
	UpdateLot       http.HandlerFunc
	ListLotSessions http.HandlerFunc

	StartSession  http.HandlerFunc
	StopSession   http.HandlerFunc
	RecordPayment http.HandlerFunc

	ListBilling        http.HandlerFunc
	ListBillingForUser http.HandlerFunc

	SessionFeed http.HandlerFunc
}

// RouterDeps collects cross-cutting dependencies.
type RouterDeps struct {
	Auth     middleware.Authenticator
	Observer middleware.RequestObserver
	Logger   *zap.Logger
}

// NewRouter registers endpoints. Handlers left nil are not mounted.
func NewRouter(routes Routes, deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	authenticated := middleware.AuthMiddleware(deps.Auth)

	public := func(pattern string, handler http.Handler) {
		if handler != nil && !isNilFunc(handler) {
			mux.Handle(pattern, handler)
		}
	}
	private := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(pattern, authenticated(handler))
		}
	}

	public("GET /health", routes.Health)
	public("GET /metrics", routes.Metrics)

	public("POST /register", routes.Register)
	public("POST /login", routes.Login)
	public("POST /logout", routes.Logout)

	public("GET /parking-lots/{$}", routes.ListLots)
	public("GET /parking-lots/{id}", routes.GetLot)
	private("POST /parking-lots/{$}", routes.CreateLot)
	private("PUT /parking-lots/{id}", routes.UpdateLot)
	private("GET /parking-lots/{id}/sessions", routes.ListLotSessions)

	private("POST /parking-lots/sessions/{id}/start", routes.StartSession)
	private("PUT /parking-lots/sessions/{id}/stop", routes.StopSession)
	private("POST /parking-lots/{id}/sessions/{sessionID}/payments", routes.RecordPayment)

	private("GET /billing", routes.ListBilling)
	private("GET /billing/{username}", routes.ListBillingForUser)

	private("GET /ws/sessions", routes.SessionFeed)

	return middleware.Chain(mux,
		middleware.Logging(deps.Logger, deps.Observer),
		middleware.Recover(deps.Logger),
	)
}

func isNilFunc(handler http.Handler) bool {
	fn, ok := handler.(http.HandlerFunc)
	return ok && fn == nil
}
