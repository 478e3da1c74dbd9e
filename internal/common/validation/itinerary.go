// internal/common/validation/itinerary.go
package validation

import (
	"fmt"

	"planmytrip/internal/models"
)

var itinerarySchema = MustLoadSchema("itinerary.json")

// ValidateItinerary checks a candidate document (usually parsed model
// output) against the itinerary shape. Activity types are free text.
func ValidateItinerary(candidate interface{}) (*models.Itinerary, *ValidationResult) {
	result := itinerarySchema.Validate(candidate)
	if !result.Valid {
		return nil, result
	}

	var it models.Itinerary
	if err := decodeInto(candidate, &it); err != nil {
		return nil, &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: rootField, Message: fmt.Sprintf("decode: %v", err), Code: CodeInvalidType}},
		}
	}
	return &it, result
}

// ValidateItineraryValue re-checks an already typed itinerary, for example
// one posted back by a client for export or saving.
func ValidateItineraryValue(it models.Itinerary) *ValidationResult {
	var doc interface{}
	if err := decodeInto(it, &doc); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: rootField, Message: err.Error(), Code: CodeInvalidType}},
		}
	}
	return itinerarySchema.Validate(doc)
}
