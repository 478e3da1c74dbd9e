// internal/common/auth/errors.go
package auth

import (
	"errors"

	apperrors "planmytrip/internal/common/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidSignup      = errors.New("invalid signup")
)

type Error struct {
	Kind       error
	Violations []apperrors.FieldViolation
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) StandardError() *apperrors.StandardError {
	switch e.Kind {
	case ErrInvalidCredentials:
		return apperrors.NewInvalidCredentialsError()
	case ErrInvalidSignup:
		return apperrors.NewInvalidInputError(e.Violations)
	default:
		return apperrors.NewAuthenticationError(e.Kind.Error())
	}
}
