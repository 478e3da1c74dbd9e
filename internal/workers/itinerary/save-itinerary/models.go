// internal/workers/itinerary/save-itinerary/models.go
package saveitinerary

import (
	"time"

	"planmytrip/internal/models"
)

type Input struct {
	UserID           string                 `json:"userId"`
	Itinerary        interface{}            `json:"itinerary"`
	StartingLocation string                 `json:"startingLocation,omitempty"`
	TripRequest      *models.TripRequest    `json:"tripRequest,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	ItineraryID string    `json:"itineraryId"`
	SavedAt     time.Time `json:"savedAt"`
}
