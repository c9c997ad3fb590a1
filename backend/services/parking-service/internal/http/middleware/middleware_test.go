package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/service"
)

type staticAuth map[string]models.Identity

func (a staticAuth) RequireAuth(header string) (models.Identity, error) {
	identity, ok := a[strings.TrimPrefix(header, "Bearer ")]
	if !ok {
		return models.Identity{}, &service.Error{Kind: service.ErrUnauthorized, Message: "Unauthorized: Invalid or expired session token"}
	}
	return identity, nil
}

type observation struct {
	method, route string
	status        int
}

type observerFunc func(method, route string, status int, elapsed time.Duration)

func (f observerFunc) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	f(method, route, status, elapsed)
}

func TestAuthMiddleware(t *testing.T) {
	alice := models.Identity{Username: "alice", Role: models.RoleUser}
	handler := AuthMiddleware(staticAuth{"tok": alice})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(identity.Username))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized: Invalid or expired session token"}`, rec.Body.String())
}

func TestIdentityFromEmptyContext(t *testing.T) {
	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestLoggingReportsMatchedPattern(t *testing.T) {
	var seen []observation
	observer := observerFunc(func(method, route string, status int, _ time.Duration) {
		seen = append(seen, observation{method, route, status})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /parking-lots/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Chain(mux, Logging(zaptest.NewLogger(t), observer))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/parking-lots/7", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, seen, 2)
	assert.Equal(t, observation{http.MethodGet, "GET /parking-lots/{id}", http.StatusTeapot}, seen[0])
	assert.Equal(t, http.StatusNotFound, seen[1].status)
}

func TestRecoverReturns500(t *testing.T) {
	var status int
	observer := observerFunc(func(_, _ string, s int, _ time.Duration) { status = s })
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Logging(zaptest.NewLogger(t), observer), Recover(zaptest.NewLogger(t)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
