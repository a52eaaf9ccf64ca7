// This is a **mock authentication service**, designed to provide JWT tokens
// for the training service, simulating user authentication.
//
//	GET /token?role=vendor&sub=<uuid>
//
// sub is optional; a fresh id is generated when it is missing.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/ehs/internal/training/auth"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token   string `json:"token"`
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

// tokenHandler generates a JWT for the requested role and subject.
func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		role, ok := models.ParseRole(q.Get("role"))
		if !ok {
			http.Error(w, "unknown or missing role", http.StatusBadRequest)
			return
		}
		sub := uuid.New()
		if s := q.Get("sub"); s != "" {
			parsed, err := uuid.Parse(s)
			if err != nil {
				http.Error(w, "sub must be a UUID", http.StatusBadRequest)
				return
			}
			sub = parsed
		}

		token, err := auth.GenerateToken(sub, role, secret)
		if err != nil {
			logger.Error("failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TokenResponse{Token: token, Subject: sub.String(), Role: string(role)}); err != nil {
			logger.Error("failed to encode token", zap.Error(err))
		}
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}
	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(secret, logger))
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	logger.Info("Authentication service running", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("authentication service stopped", zap.Error(err))
	}
}
