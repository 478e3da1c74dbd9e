// internal/workers/planning/generate-itinerary/models.go
package generateitinerary

import (
	"time"

	"planmytrip/internal/models"
)

type Input struct {
	TripRequest map[string]interface{} `json:"tripRequest"`
}

type Output struct {
	Itinerary   models.Itinerary `json:"itinerary"`
	Destination string           `json:"destination"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
