package auth

import (
	"net/http"
	"strings"

	"github.com/gartstein/ehs/internal/training/models"
)

// HTTPMiddleware authenticates every request under /v1/. Other paths, such
// as health and metrics, pass through.
func HTTPMiddleware(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isProtectedRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			writeUnauthorized(w, "authorization header required")
			return
		}

		actor, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithActor(r.Context(), actor)))
	})
}

func isProtectedRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/v1/")
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
