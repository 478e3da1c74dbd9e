// internal/store/errors.go
package store

import (
	"errors"
	"fmt"

	apperrors "planmytrip/internal/common/errors"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateUser = errors.New("email or username already registered")
	ErrQuery         = errors.New("query failed")
)

// Error is returned by every store method. Kind is one of the sentinels
// above so callers can use errors.Is.
type Error struct {
	Op     string
	Kind   error
	Entity string
	ID     string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.ID != "" {
		msg += fmt.Sprintf(" (%s %s)", e.Entity, e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) StandardError() *apperrors.StandardError {
	switch e.Kind {
	case ErrNotFound:
		if e.Entity == entityUser {
			return apperrors.NewUserNotFoundError(e.ID)
		}
		return apperrors.NewItineraryNotFoundError(e.ID)
	case ErrDuplicateUser:
		return apperrors.NewDuplicateUserError(e.ID)
	default:
		if e.Op == opInsert {
			return apperrors.NewDatabaseInsertFailedError(e.Err)
		}
		return apperrors.NewQueryExecutionFailedError(e.Op, e.Err)
	}
}

const (
	entityUser      = "user"
	entityItinerary = "itinerary"

	opInsert = "insert"
)

func notFound(op, entity, id string) error {
	return &Error{Op: op, Kind: ErrNotFound, Entity: entity, ID: id}
}

func queryFailed(op string, err error) error {
	return &Error{Op: op, Kind: ErrQuery, Err: err}
}
