package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Middleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("limits by address", func(t *testing.T) {
		h := NewRateLimiter(0.001, 1).Middleware(ok)
		call := func(addr string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/trainings", nil)
			req.RemoteAddr = addr
			h.ServeHTTP(rec, req)
			return rec
		}
		assert.Equal(t, http.StatusOK, call("10.0.0.1:1234").Code)
		rec := call("10.0.0.1:5678")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Equal(t, http.StatusOK, call("10.0.0.2:1234").Code)
	})

	t.Run("limits by actor", func(t *testing.T) {
		h := NewRateLimiter(0.001, 1).Middleware(ok)
		actor := models.Actor{ID: uuid.New(), Role: models.RoleVendor}
		call := func(addr string) int {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
			req.RemoteAddr = addr
			h.ServeHTTP(rec, req.WithContext(models.WithActor(req.Context(), actor)))
			return rec.Code
		}
		assert.Equal(t, http.StatusOK, call("10.0.0.1:1"))
		assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.9:1"))
	})

	t.Run("disabled", func(t *testing.T) {
		h := NewRateLimiter(0, 1).Middleware(ok)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trainings", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("nil limiter", func(t *testing.T) {
		var l *RateLimiter
		rec := httptest.NewRecorder()
		l.Middleware(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
