// Package auth authenticates callers of the training service from JWT bearer
// tokens and places the resulting actor in the request context.
package auth

import (
	"context"
	"strings"

	"github.com/gartstein/ehs/internal/training/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Interceptor holds the JWT secret and the method prefixes reachable without a token.
type Interceptor struct {
	jwtSecret     string
	publicMethods []string
}

// NewAuthInterceptor creates a new Interceptor. Every method except the
// standard health service requires a token.
func NewAuthInterceptor(jwtSecret string) *Interceptor {
	return &Interceptor{
		jwtSecret:     jwtSecret,
		publicMethods: []string{"/grpc.health.v1.Health/"},
	}
}

func (i *Interceptor) isPublic(fullMethod string) bool {
	for _, prefix := range i.publicMethods {
		if strings.HasPrefix(fullMethod, prefix) {
			return true
		}
	}
	return false
}

// Unary returns a gRPC unary interceptor for token validation.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.isPublic(info.FullMethod) {
			return handler(ctx, req)
		}
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "metadata missing")
		}

		tokenString, err := extractTokenFromMetadata(md)
		if err != nil {
			return nil, err
		}

		actor, err := validateToken(tokenString, i.jwtSecret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		return handler(models.WithActor(ctx, actor), req)
	}
}

// extractTokenFromMetadata retrieves a Bearer token from gRPC metadata.
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization header missing")
	}

	tokenString, ok := bearer(authHeaders[0])
	if !ok {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format")
	}
	return tokenString, nil
}

func bearer(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
