// internal/workers/communication/send-itinerary-email/models.go
package senditineraryemail

import "time"

type Input struct {
	UserID      string      `json:"userId"`
	Email       string      `json:"email,omitempty"`
	ItineraryID string      `json:"itineraryId,omitempty"`
	Itinerary   interface{} `json:"itinerary"`
}

type Output struct {
	MessageID string    `json:"messageId"`
	SentTo    string    `json:"sentTo"`
	SentAt    time.Time `json:"sentAt"`
}
