// internal/common/validation/trip.go
package validation

import (
	"fmt"
	"strings"

	"planmytrip/internal/models"
)

var tripRequestSchema = MustLoadSchema("trip_request.json")

// ValidateTripRequest checks a decoded request body and, when it is valid,
// returns the typed TripRequest. Either the request or a failing result is
// returned, never both.
func ValidateTripRequest(doc map[string]interface{}) (*models.TripRequest, *ValidationResult) {
	if doc == nil {
		return nil, &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: rootField, Message: "request body must be an object", Code: CodeInvalidType}},
		}
	}

	result := tripRequestSchema.Validate(doc)
	if !result.Valid {
		return nil, result
	}

	var req models.TripRequest
	if err := decodeInto(doc, &req); err != nil {
		return nil, &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: rootField, Message: fmt.Sprintf("decode: %v", err), Code: CodeInvalidType}},
		}
	}

	req.Destination = strings.TrimSpace(req.Destination)
	req.StartingLocation = strings.TrimSpace(req.StartingLocation)
	for i, interest := range req.Interests {
		req.Interests[i] = strings.TrimSpace(interest)
	}

	return &req, result
}
