package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so each transport can translate them at its
// boundary without inspecting messages.
type ErrorKind int

const (
	KindServer ErrorKind = iota
	KindValidation
	KindBadRequest
	KindAuthentication
	KindInvalidOrExpiredToken
	KindNotFound
	KindBusinessRule
	KindTooManyRequests
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindAuthentication:
		return "authentication"
	case KindInvalidOrExpiredToken:
		return "invalid_or_expired_token"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "server"
	}
}

// Error is a client-presentable failure. Message is safe to return to callers;
// Err carries the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewValidationError(message string) *Error {
	return newError(KindValidation, message)
}

func NewBadRequestError(message string) *Error {
	return newError(KindBadRequest, message)
}

var (
	ErrMissingCredentials = newError(KindBadRequest, "Please provide your email and password!")
	ErrInvalidCredentials = newError(KindAuthentication, "Email or password is wrong!")
	ErrNotLoggedIn        = newError(KindAuthentication, "You are not logged in.")
	ErrUserNoLongerExists = newError(KindAuthentication, "The user no longer exists.")
	ErrPasswordChanged    = newError(KindAuthentication, "Password has been changed. Please log in again.")
	ErrInvalidToken       = newError(KindAuthentication, "Invalid token. Please log in again!")
	ErrTokenExpired       = newError(KindAuthentication, "Your token has expired! Please log in again.")
	ErrWrongPassword      = newError(KindAuthentication, "Your password is not correct")
	ErrEmailInUse         = newError(KindValidation, "Email is already in use!")
	ErrPasswordsMismatch  = newError(KindValidation, "Passwords are not the same!")
	ErrNoAccountWithEmail = newError(KindBadRequest, "There is no account with this email!")
	ErrEmailRequired      = newError(KindBadRequest, "Please provide your email!")
	ErrPasswordsRequired  = newError(KindBadRequest, "Please provide your current and new password!")
	ErrResetTokenInvalid  = newError(KindInvalidOrExpiredToken, "Your token is invalid or expired. Please try again!")
	ErrSendEmailFailed    = newError(KindServer, "There was an error sending the email. Please try again!")
	ErrTooManyResets      = newError(KindTooManyRequests, "Too many password reset requests. Please try again later!")
	ErrJobNotFound        = newError(KindNotFound, "The job you want to apply does not exist!")
	ErrSelfApplication    = newError(KindBusinessRule, "You cannot apply for the job posted by yourself!")
	ErrAlreadyApplied     = newError(KindBusinessRule, "You have already applied for this job!")
	ErrInvalidRequestBody = newError(KindBadRequest, "Invalid request body!")
	ErrInvalidJobID       = newError(KindBadRequest, "Invalid job id!")
	ErrInternal           = newError(KindServer, "Something went very wrong!")
)

// KindOf reports the kind of err, or KindServer for unclassified errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindServer
}

// PublicMessage returns the message that may be shown to a client for err.
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ErrInternal.Message
}
