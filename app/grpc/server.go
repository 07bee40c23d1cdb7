package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-jobboard/app/dto"
	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
	"github.com/vibast-solutions/ms-go-jobboard/app/service"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type applicationService interface {
	ApplyForJob(ctx context.Context, applicant *entity.User, req *types.ApplyForJobRequest) error
}

var _ AuthServiceServer = (*AuthServer)(nil)

type AuthServer struct {
	userAuthService    service.UserAuthService
	applicationService applicationService
	baseURL            string
}

// NewAuthServer builds reset links from baseURL, since gRPC calls carry no
// host to derive one from.
func NewAuthServer(userAuthService service.UserAuthService, applicationService applicationService, baseURL string) *AuthServer {
	return &AuthServer{
		userAuthService:    userAuthService,
		applicationService: applicationService,
		baseURL:            baseURL,
	}
}

func (s *AuthServer) Signup(ctx context.Context, req *types.SignupRequest) (*types.SessionReply, error) {
	logrus.WithField("email", req.Email).Info("Signup request received (grpc)")
	result, err := s.userAuthService.Signup(ctx, req)
	if err != nil {
		logFailure(err, "Signup failed (grpc)")
		return nil, statusFromError(err)
	}

	logrus.WithField("user_id", result.User.ID).Info("User signed up (grpc)")
	return sessionReply("User created successfully!", result), nil
}

func (s *AuthServer) Login(ctx context.Context, req *types.LoginRequest) (*types.SessionReply, error) {
	logrus.WithField("email", req.Email).Info("Login request received (grpc)")
	result, err := s.userAuthService.Login(ctx, req)
	if err != nil {
		logFailure(err, "Login failed (grpc)")
		return nil, statusFromError(err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful (grpc)")
	return sessionReply("Logged in successfully!", result), nil
}

func (s *AuthServer) ForgotPassword(ctx context.Context, req *types.ForgotPasswordRequest) (*types.MessageReply, error) {
	logrus.WithField("email", req.Email).Info("Password reset requested (grpc)")
	if err := s.userAuthService.ForgotPassword(ctx, s.baseURL, req); err != nil {
		logFailure(err, "Forgot password failed (grpc)")
		return nil, statusFromError(err)
	}

	return &types.MessageReply{Message: "Email sent successfully!"}, nil
}

func (s *AuthServer) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) (*types.SessionReply, error) {
	logrus.Info("Reset password request received (grpc)")
	result, err := s.userAuthService.ResetPassword(ctx, req)
	if err != nil {
		logFailure(err, "Reset password failed (grpc)")
		return nil, statusFromError(err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Password reset (grpc)")
	return sessionReply("Password updated!", result), nil
}

func (s *AuthServer) UpdatePassword(ctx context.Context, req *types.UpdatePasswordRequest) (*types.SessionReply, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, statusFromError(service.ErrNotLoggedIn)
	}

	logrus.WithField("user_id", user.ID).Info("Update password request received (grpc)")
	result, err := s.userAuthService.UpdatePassword(ctx, user.ID, req)
	if err != nil {
		logFailure(err, "Update password failed (grpc)")
		return nil, statusFromError(err)
	}

	return sessionReply("Password updated!", result), nil
}

func (s *AuthServer) ApplyForJob(ctx context.Context, req *types.ApplyForJobRequest) (*types.MessageReply, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, statusFromError(service.ErrNotLoggedIn)
	}

	logrus.WithFields(logrus.Fields{
		"job_id":  req.JobID,
		"user_id": user.ID,
	}).Info("Apply for job request received (grpc)")
	if err := s.applicationService.ApplyForJob(ctx, user, req); err != nil {
		logFailure(err, "Apply for job failed (grpc)")
		return nil, statusFromError(err)
	}

	return &types.MessageReply{Message: "Application sent!"}, nil
}

// ValidateToken reports Valid=false for rejected tokens instead of an error.
func (s *AuthServer) ValidateToken(ctx context.Context, req *types.ValidateTokenRequest) (*types.ValidateTokenResponse, error) {
	if err := req.Validate(); err != nil {
		logrus.Debug("Validate token validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	user, err := s.userAuthService.ValidateToken(ctx, req.Token)
	if err != nil {
		if service.KindOf(err) == service.KindAuthentication {
			logrus.Debug("Validate token failed (grpc)")
			return &types.ValidateTokenResponse{Valid: false}, nil
		}
		logFailure(err, "Validate token failed (grpc)")
		return nil, statusFromError(err)
	}

	logrus.WithField("user_id", user.ID).Debug("Validate token succeeded (grpc)")
	return &types.ValidateTokenResponse{Valid: true, UserID: user.ID, Email: user.Email}, nil
}

func sessionReply(message string, result *dto.SessionResult) *types.SessionReply {
	return &types.SessionReply{
		Message: message,
		Token:   result.Token,
		User:    types.NewUserResponse(result.User),
	}
}

func logFailure(err error, msg string) {
	if service.KindOf(err) == service.KindServer {
		logrus.WithError(err).Error(msg)
		return
	}
	logrus.WithError(err).Warn(msg)
}
