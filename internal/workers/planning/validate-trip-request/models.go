// internal/workers/planning/validate-trip-request/models.go
package validatetriprequest

import (
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/models"
)

type Input struct {
	TripRequest map[string]interface{} `json:"tripRequest"`
}

// Output replaces the tripRequest variable with its normalized form when
// valid, so later tasks read trimmed values.
type Output struct {
	Valid       bool                       `json:"valid"`
	Violations  []apperrors.FieldViolation `json:"violations"`
	TripRequest *models.TripRequest        `json:"tripRequest,omitempty"`
}
