package auth

import (
	"fmt"
	"time"

	"github.com/gartstein/ehs/internal/training/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is set on every token this package issues.
const Issuer = "auth-service"

// TokenTTL is the lifetime of issued tokens.
const TokenTTL = 24 * time.Hour

// GenerateToken issues an HS256 token for subject acting in role.
func GenerateToken(subject uuid.UUID, role models.Role, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject.String(),
		"role": string(role),
		"exp":  now.Add(TokenTTL).Unix(),
		"iat":  now.Unix(),
		"iss":  Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateToken checks the token signature and resolves the actor it names.
func validateToken(tokenString, secret string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid subject: %w", err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Actor{}, fmt.Errorf("subject is not a uuid: %w", err)
	}
	roleName, _ := claims["role"].(string)
	role, ok := models.ParseRole(roleName)
	if !ok {
		return models.Actor{}, fmt.Errorf("unknown role %q", roleName)
	}
	return models.Actor{ID: id, Role: role}, nil
}
