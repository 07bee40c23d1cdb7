package controller

import (
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-jobboard/app/dto/http"
	"github.com/vibast-solutions/ms-go-jobboard/app/middleware"
	"github.com/vibast-solutions/ms-go-jobboard/app/service"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgUserCreated     = "User created successfully!"
	msgLoggedIn        = "Logged in successfully!"
	msgEmailSent       = "Email sent successfully!"
	msgPasswordUpdated = "Password updated!"
)

type AuthController struct {
	userAuthService service.UserAuthService
	publicBaseURL   string
}

// NewAuthController builds reset links from publicBaseURL, or from the
// request's scheme and host when it is empty.
func NewAuthController(userAuthService service.UserAuthService, publicBaseURL string) *AuthController {
	return &AuthController{userAuthService: userAuthService, publicBaseURL: publicBaseURL}
}

func (c *AuthController) Signup(ctx echo.Context) error {
	req, err := types.NewSignupRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind signup request")
		return service.ErrInvalidRequestBody
	}

	logrus.WithField("email", req.Email).Info("Signup request received")
	result, err := c.userAuthService.Signup(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", result.User.ID).Info("User signed up")
	return ctx.JSON(http.StatusCreated, httpdto.NewSessionResponse(msgUserCreated, result.Token, types.NewUserResponse(result.User)))
}

func (c *AuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return service.ErrInvalidRequestBody
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.userAuthService.Login(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.NewSessionResponse(msgLoggedIn, result.Token, types.NewUserResponse(result.User)))
}

func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	req, err := types.NewForgotPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind forgot password request")
		return service.ErrInvalidRequestBody
	}

	logrus.WithField("email", req.Email).Info("Password reset requested")
	if err = c.userAuthService.ForgotPassword(ctx.Request().Context(), c.baseURL(ctx), req); err != nil {
		return err
	}

	logrus.WithField("email", req.Email).Info("Password reset email sent")
	return ctx.JSON(http.StatusOK, httpdto.NewMessageResponse(msgEmailSent))
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return service.ErrInvalidRequestBody
	}

	logrus.Info("Reset password request received")
	result, err := c.userAuthService.ResetPassword(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", result.User.ID).Info("Password reset")
	return ctx.JSON(http.StatusOK, httpdto.NewSessionResponse(msgPasswordUpdated, result.Token, types.NewUserResponse(result.User)))
}

func (c *AuthController) UpdatePassword(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		logrus.Warn("Update password failed: missing user in context")
		return service.ErrNotLoggedIn
	}

	req, err := types.NewUpdatePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update password request")
		return service.ErrInvalidRequestBody
	}

	logrus.WithField("user_id", user.ID).Info("Update password request received")
	result, err := c.userAuthService.UpdatePassword(ctx.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", user.ID).Info("Password updated")
	return ctx.JSON(http.StatusOK, httpdto.NewSessionResponse(msgPasswordUpdated, result.Token, types.NewUserResponse(result.User)))
}

func (c *AuthController) baseURL(ctx echo.Context) string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL
	}
	return ctx.Scheme() + "://" + ctx.Request().Host
}
