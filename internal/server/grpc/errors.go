package grpc

import (
	"context"
	"errors"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusError maps a domain error to a gRPC status. Unexpected errors are
// logged and reported as a generic Internal.
func (s *Server) statusError(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var qe *common.QuotaError
	var ve *common.ValidationError

	switch {
	case errors.As(err, &qe):
		s.observer.QuotaRejected(qe.Limit)
		return status.Error(codes.ResourceExhausted, qe.Error())
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrAlreadyActivated):
		return status.Error(codes.FailedPrecondition, "invite already activated")
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, "conflict")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrTooManyRequests):
		return status.Error(codes.ResourceExhausted, "too many requests")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
