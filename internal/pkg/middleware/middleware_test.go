package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/cache"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/middleware"
)

type stubAuthenticator struct {
	actor domain.Actor
	err   error
}

func (s stubAuthenticator) Authenticate(string) (domain.Actor, error) {
	return s.actor, s.err
}

func actorEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Actor", actor.ID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	log := logger.NewNop()
	manager := domain.Actor{ID: "u1", Email: "gerente@loja.com", CanManage: true}

	tests := []struct {
		name       string
		header     string
		auth       stubAuthenticator
		wantStatus int
	}{
		{"sem header", "", stubAuthenticator{actor: manager}, http.StatusUnauthorized},
		{"sem prefixo Bearer", "Token abc", stubAuthenticator{actor: manager}, http.StatusUnauthorized},
		{"token inválido", "Bearer abc", stubAuthenticator{err: apperror.NewUnauthorizedError("Token inválido.")}, http.StatusUnauthorized},
		{"token válido", "Bearer abc", stubAuthenticator{actor: manager}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.NewAuthMiddleware(tt.auth, log)(actorEcho(t))
			req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "u1", rec.Header().Get("X-Actor"))
			}
		})
	}
}

func TestRequireManage(t *testing.T) {
	log := logger.NewNop()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middleware.RequireManage(log)(ok)

	cases := []struct {
		name       string
		ctx        context.Context
		wantStatus int
	}{
		{"sem ator", context.Background(), http.StatusUnauthorized},
		{"usuario comum", middleware.WithActor(context.Background(), domain.Actor{ID: "u2"}), http.StatusForbidden},
		{"gerente", middleware.WithActor(context.Background(), domain.Actor{ID: "u1", CanManage: true}), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/returns/r1/approve", nil).WithContext(tc.ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.Connect(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middleware.RateLimiter(cache.NewRedisClient(rdb), 2, time.Minute, logger.NewNop())(ok)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	assert.True(t, mr.TTL("backoffice:rate-limit:10.0.0.1") > 0)

	// Outro IP tem sua própria janela.
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_CounterWithoutTTLGetsWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.Connect(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	// Contador acima do limite e sem expiração: antes bloqueava o IP para sempre.
	key := "backoffice:rate-limit:10.0.0.3"
	require.NoError(t, mr.Set(key, "50"))

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middleware.RateLimiter(cache.NewRedisClient(rdb), 2, time.Minute, logger.NewNop())(ok)

	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.RemoteAddr = "10.0.0.3:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, mr.TTL(key) > 0)

	mr.FastForward(2 * time.Minute)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.Connect(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := middleware.RateLimiter(cache.NewRedisClient(rdb), 1, time.Minute, logger.NewNop())(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	handler := middleware.RequestLogger(logger.NewNop())(ok)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecoverer(t *testing.T) {
	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("falhou") })
	handler := middleware.Recoverer(logger.NewNop())(boom)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
