package handlers

import (
	"errors"
	"net/http"

	e "github.com/gartstein/ehs/internal/training/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorMapping struct {
	target error
	kind   string
	code   codes.Code
	status int
}

var errorMappings = []errorMapping{
	{e.ErrValidation, "validation", codes.InvalidArgument, http.StatusBadRequest},
	{e.ErrForbidden, "forbidden", codes.PermissionDenied, http.StatusForbidden},
	{e.ErrNotFound, "not_found", codes.NotFound, http.StatusNotFound},
	{e.ErrInvalidTransition, "invalid_transition", codes.FailedPrecondition, http.StatusConflict},
	{e.ErrAlreadyDecided, "already_decided", codes.AlreadyExists, http.StatusConflict},
	{e.ErrConflict, "conflict", codes.Aborted, http.StatusConflict},
	{e.ErrPrecondition, "precondition", codes.FailedPrecondition, http.StatusPreconditionFailed},
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// mapServiceError maps domain or repository errors to gRPC status codes.
func mapServiceError(logger *zap.Logger, err error) error {
	if m, ok := lookupError(err); ok {
		return status.Error(m.code, err.Error())
	}
	logger.Error("Internal server error", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

// httpError maps domain or repository errors to an HTTP status and body.
func httpError(logger *zap.Logger, err error) (int, ErrorResponse) {
	if m, ok := lookupError(err); ok {
		return m.status, ErrorResponse{Error: err.Error(), Kind: m.kind}
	}
	logger.Error("Internal server error", zap.Error(err))
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Kind: "internal"}
}
