package grpc

import (
	"errors"

	"github.com/vibast-solutions/ms-go-jobboard/app/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func statusFromError(err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return status.Error(codes.Internal, "internal server error")
	}

	switch svcErr.Kind {
	case service.KindValidation, service.KindBadRequest, service.KindInvalidOrExpiredToken, service.KindBusinessRule:
		return status.Error(codes.InvalidArgument, svcErr.Message)
	case service.KindAuthentication:
		return status.Error(codes.Unauthenticated, svcErr.Message)
	case service.KindNotFound:
		return status.Error(codes.NotFound, svcErr.Message)
	case service.KindTooManyRequests:
		return status.Error(codes.ResourceExhausted, svcErr.Message)
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
