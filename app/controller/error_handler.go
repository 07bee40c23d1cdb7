package controller

import (
	"errors"
	"fmt"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-jobboard/app/dto/http"
	"github.com/vibast-solutions/ms-go-jobboard/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorHandler is installed as echo's HTTPErrorHandler. Service errors are
// mapped by kind; echo errors keep their status; anything else is a 500 with
// a generic message.
func ErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status, message := translateError(err)

	entry := logrus.WithFields(logrus.Fields{
		"method": ctx.Request().Method,
		"path":   ctx.Request().URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("Request failed")
	} else {
		entry.WithError(err).Warn("Request rejected")
	}

	body := httpdto.ErrorResponse{Status: httpdto.StatusFail, Message: message}
	if status >= http.StatusInternalServerError {
		body.Status = httpdto.StatusError
	}

	var writeErr error
	if ctx.Request().Method == http.MethodHead {
		writeErr = ctx.NoContent(status)
	} else {
		writeErr = ctx.JSON(status, body)
	}
	if writeErr != nil {
		logrus.WithError(writeErr).Error("Failed to write error response")
	}
}

func translateError(err error) (int, string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return statusForKind(svcErr.Kind), svcErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		if httpErr.Message != nil {
			return httpErr.Code, fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	return http.StatusInternalServerError, service.ErrInternal.Message
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindBadRequest, service.KindInvalidOrExpiredToken, service.KindBusinessRule:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
