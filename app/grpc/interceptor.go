package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type userKey struct{}

type protector interface {
	Protect(ctx context.Context, authorization string) (*entity.User, error)
}

// ProtectUnaryInterceptor resolves the "authorization" metadata to a user for
// protected methods and stores it on the context. Other methods pass through.
func ProtectUnaryInterceptor(authService protector) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if !protectedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		user, err := authService.Protect(ctx, authorizationFromMetadata(ctx))
		if err != nil {
			logrus.WithError(err).WithField("method", info.FullMethod).Debug("Protect rejected call (grpc)")
			return nil, statusFromError(err)
		}

		return handler(context.WithValue(ctx, userKey{}, user), req)
	}
}

// UserFromContext returns the user stored by ProtectUnaryInterceptor.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userKey{}).(*entity.User)
	return user, ok && user != nil
}

func authorizationFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
