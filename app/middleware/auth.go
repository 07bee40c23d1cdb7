package middleware

import (
	"context"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const ContextKeyUser = "user"

type protector interface {
	Protect(ctx context.Context, authorization string) (*entity.User, error)
}

type AuthMiddleware struct {
	authService protector
}

func NewAuthMiddleware(authService protector) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Protect resolves the bearer token to a user and stores it on the context.
// Failures are returned to the central error handler.
func (m *AuthMiddleware) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.authService.Protect(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			logrus.WithError(err).WithField("path", c.Path()).Debug("Protect rejected request")
			return err
		}

		c.Set(ContextKeyUser, user)
		return next(c)
	}
}

// CurrentUser returns the user stored by Protect.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*entity.User)
	return user, ok && user != nil
}
