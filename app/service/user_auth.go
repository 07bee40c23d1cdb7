package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/dto"
	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
	"github.com/vibast-solutions/ms-go-jobboard/app/mailer"
	"github.com/vibast-solutions/ms-go-jobboard/app/repository"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"
	"github.com/vibast-solutions/ms-go-jobboard/config"

	"github.com/sirupsen/logrus"
)

const (
	ResetPasswordPath  = "/api/v1/users/reset-password/"
	resetMailSubject   = "Reset your password!"
	mailCleanupTimeout = 5 * time.Second
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	SetResetToken(ctx context.Context, userID uint64, tokenHash sql.NullString, expiresAt sql.NullTime) error
	UpdatePassword(ctx context.Context, userID uint64, passwordHash string, changedAt time.Time) error
	ConsumeResetToken(ctx context.Context, userID uint64, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (bool, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type resetLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// EventRecorder receives one event per completed operation.
type EventRecorder interface {
	RecordAuthEvent(operation, outcome string)
	RecordMailFailure()
}

type UserAuthService interface {
	Signup(ctx context.Context, req *types.SignupRequest) (*dto.SessionResult, error)
	Login(ctx context.Context, req *types.LoginRequest) (*dto.SessionResult, error)
	Protect(ctx context.Context, authorization string) (*entity.User, error)
	ValidateToken(ctx context.Context, token string) (*entity.User, error)
	ForgotPassword(ctx context.Context, baseURL string, req *types.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) (*dto.SessionResult, error)
	UpdatePassword(ctx context.Context, userID uint64, req *types.UpdatePasswordRequest) (*dto.SessionResult, error)
}

type UserAuthServiceOption func(*userAuthService)

type userAuthService struct {
	userRepo userRepository
	tokens   *TokenService
	mail     mailSender
	cfg      *config.Config
	limiter  resetLimiter
	events   EventRecorder
	now      Clock
}

func NewUserAuthService(
	userRepo userRepository,
	tokens *TokenService,
	mail mailSender,
	cfg *config.Config,
	opts ...UserAuthServiceOption,
) UserAuthService {
	svc := &userAuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
		limiter:  allowAll{},
		events:   noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithClock(now Clock) UserAuthServiceOption {
	return func(s *userAuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithResetLimiter(limiter resetLimiter) UserAuthServiceOption {
	return func(s *userAuthService) {
		if limiter != nil {
			s.limiter = limiter
		}
	}
}

func WithEventRecorder(events EventRecorder) UserAuthServiceOption {
	return func(s *userAuthService) {
		if events != nil {
			s.events = events
		}
	}
}

func (s *userAuthService) Signup(ctx context.Context, req *types.SignupRequest) (result *dto.SessionResult, err error) {
	defer func() { s.events.RecordAuthEvent("signup", outcome(err)) }()

	req.Email = NormalizeEmail(req.Email)
	if err = req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	if err = s.checkNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	email := req.Email
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	passwordHash, err := hashPassword(req.Password, s.cfg.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &entity.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: passwordHash,
		About:        req.About,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.newSession(user)
}

func (s *userAuthService) Login(ctx context.Context, req *types.LoginRequest) (result *dto.SessionResult, err error) {
	defer func() { s.events.RecordAuthEvent("login", outcome(err)) }()

	if err = req.Validate(); err != nil {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil || !passwordMatches(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

func (s *userAuthService) Protect(ctx context.Context, authorization string) (*entity.User, error) {
	token := types.BearerToken(authorization)
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return s.authenticate(ctx, token)
}

func (s *userAuthService) ValidateToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return s.authenticate(ctx, token)
}

func (s *userAuthService) authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if user == nil {
		return nil, ErrUserNoLongerExists
	}
	if passwordChangedAfter(user, claims.IssuedAt.Time) {
		return nil, ErrPasswordChanged
	}

	return user, nil
}

func (s *userAuthService) ForgotPassword(ctx context.Context, baseURL string, req *types.ForgotPasswordRequest) (err error) {
	defer func() { s.events.RecordAuthEvent("forgot_password", outcome(err)) }()

	if err = req.Validate(); err != nil {
		return ErrEmailRequired
	}
	email := NormalizeEmail(req.Email)

	if !s.limiter.Allow(ctx, email) {
		return ErrTooManyResets
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return ErrNoAccountWithEmail
	}

	rawToken, tokenHash, err := GenerateResetToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.cfg.Tokens.ResetTTL)
	err = s.userRepo.SetResetToken(ctx, user.ID,
		sql.NullString{String: tokenHash, Valid: true},
		sql.NullTime{Time: expiresAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: resetMailSubject,
		Text:    resetMailText(baseURL+ResetPasswordPath+rawToken, s.cfg.Tokens.ResetTTL),
	}
	if sendErr := s.mail.Send(ctx, msg); sendErr != nil {
		s.events.RecordMailFailure()
		logrus.WithError(sendErr).WithField("user_id", user.ID).Error("Failed to send password reset email")
		s.clearResetToken(ctx, user.ID)
		return &Error{Kind: KindServer, Message: ErrSendEmailFailed.Message, Err: sendErr}
	}

	return nil
}

// clearResetToken undoes a stored reset token after mail delivery failed. It
// runs on a fresh context so a cancelled request cannot skip it.
func (s *userAuthService) clearResetToken(ctx context.Context, userID uint64) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailCleanupTimeout)
	defer cancel()

	if err := s.userRepo.SetResetToken(cleanupCtx, userID, sql.NullString{}, sql.NullTime{}); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to clear reset token after mail failure")
	}
}

func (s *userAuthService) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) (result *dto.SessionResult, err error) {
	defer func() { s.events.RecordAuthEvent("reset_password", outcome(err)) }()

	if req.Token == "" {
		return nil, ErrResetTokenInvalid
	}
	tokenHash := HashResetToken(req.Token)

	user, err := s.userRepo.FindByValidResetToken(ctx, tokenHash, s.now())
	if err != nil {
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil {
		return nil, ErrResetTokenInvalid
	}

	if err = req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	if err = s.checkNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(req.Password, s.cfg.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	changedAt := now.Add(-passwordChangeSkew)
	consumed, err := s.userRepo.ConsumeResetToken(ctx, user.ID, tokenHash, now, passwordHash, changedAt)
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	if !consumed {
		return nil, ErrResetTokenInvalid
	}

	user.PasswordHash = passwordHash
	user.PasswordChangedAt = sql.NullTime{Time: changedAt, Valid: true}
	user.ResetTokenHash = sql.NullString{}
	user.ResetTokenExpiresAt = sql.NullTime{}

	return s.newSession(user)
}

func (s *userAuthService) UpdatePassword(ctx context.Context, userID uint64, req *types.UpdatePasswordRequest) (result *dto.SessionResult, err error) {
	defer func() { s.events.RecordAuthEvent("update_password", outcome(err)) }()

	if req.OldPassword == "" || req.NewPassword == "" {
		return nil, ErrPasswordsRequired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if user == nil {
		return nil, ErrUserNoLongerExists
	}

	if !passwordMatches(user.PasswordHash, req.OldPassword) {
		return nil, ErrWrongPassword
	}
	if err = s.checkNewPassword(req.NewPassword, req.PasswordConfirm); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(req.NewPassword, s.cfg.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now().Add(-passwordChangeSkew)
	if err = s.userRepo.UpdatePassword(ctx, user.ID, passwordHash, changedAt); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	user.PasswordHash = passwordHash
	user.PasswordChangedAt = sql.NullTime{Time: changedAt, Valid: true}

	return s.newSession(user)
}

func (s *userAuthService) checkNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordsMismatch
	}
	if err := s.cfg.Password.Policy.Validate(password); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

func (s *userAuthService) newSession(user *entity.User) (*dto.SessionResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResult{User: user, Token: token}, nil
}

func resetMailText(resetURL string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\n"+
			"This link is valid for %d minutes.\n"+
			"If you didn't forget your password, please ignore this email!",
		resetURL, int(ttl.Minutes()),
	)
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return KindOf(err).String()
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }

type noopRecorder struct{}

func (noopRecorder) RecordAuthEvent(string, string) {}
func (noopRecorder) RecordMailFailure()             {}
