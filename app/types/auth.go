package types

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"
)

type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	About           string `json:"about,omitempty"`
}

func NewSignupRequestFromContext(ctx echo.Context) (*SignupRequest, error) {
	var body SignupRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *SignupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(0, 128)),
		validation.Field(&r.LastName, validation.Required, validation.Length(0, 128)),
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(0, 320)),
		validation.Field(&r.Password, validation.Required, validation.Length(0, 512)),
		validation.Field(&r.PasswordConfirm, validation.Required, validation.Length(0, 512)),
		validation.Field(&r.About, validation.Length(0, 2048)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.Length(0, 320)),
		validation.Field(&r.Password, validation.Required, validation.Length(0, 512)),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func NewForgotPasswordRequestFromContext(ctx echo.Context) (*ForgotPasswordRequest, error) {
	var body ForgotPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.Length(0, 320)),
	)
}

// ResetPasswordRequest carries the raw reset token from the URL path; over
// gRPC it travels in the message body instead.
type ResetPasswordRequest struct {
	Token           string `json:"token,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Token = ctx.Param("token")

	return &body, nil
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, validation.Length(0, 512)),
		validation.Field(&r.PasswordConfirm, validation.Required, validation.Length(0, 512)),
	)
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func NewUpdatePasswordRequestFromContext(ctx echo.Context) (*UpdatePasswordRequest, error) {
	var body UpdatePasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldPassword, validation.Required, validation.Length(0, 512)),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(0, 512)),
		validation.Field(&r.PasswordConfirm, validation.Required, validation.Length(0, 512)),
	)
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

func (r *ValidateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}

type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID uint64 `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. It returns "" when the scheme is missing or the token is empty.
func BearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
