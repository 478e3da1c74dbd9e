// internal/generation/errors.go
package generation

import (
	"errors"
	"fmt"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/validation"
)

var (
	ErrModelUnavailable = errors.New("MODEL_UNAVAILABLE")
	ErrMalformedOutput  = errors.New("MALFORMED_OUTPUT")
	ErrSchemaViolation  = errors.New("SCHEMA_VIOLATION")
)

// GenerationError is the typed failure returned by Generator.Generate.
// Kind is one of the three sentinels above.
type GenerationError struct {
	Kind       error
	Attempt    int
	Violations []validation.ValidationError
	Raw        string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (attempt %d): %v", e.Kind, e.Attempt, e.Err)
	}
	return fmt.Sprintf("%v (attempt %d)", e.Kind, e.Attempt)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == e.Kind
}

// StandardError converts the failure for HTTP responses and BPMN errors.
func (e *GenerationError) StandardError() *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch e.Kind {
	case ErrMalformedOutput:
		stdErr = apperrors.NewMalformedOutputError(e.Err)
	case ErrSchemaViolation:
		result := &validation.ValidationResult{Errors: e.Violations}
		stdErr = apperrors.NewSchemaViolationError(result.ToFieldViolations(), e.Err)
	default:
		stdErr = apperrors.NewModelUnavailableError(e.Err)
		if IsRejected(e.Err) {
			// Another call would be refused the same way.
			stdErr.Retryable = false
			stdErr = stdErr.WithMetadata("rejected", true)
		}
	}
	return stdErr.WithMetadata("attempt", e.Attempt)
}
