// internal/models/itinerary.go
package models

import (
	"encoding/json"
	"time"
)

// Activity is one scheduled item in a day. Type is free text ("museum",
// "street-food", "check-in"); position in DayPlan.Activities is the order.
type Activity struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Details     string `json:"details,omitempty"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
}

// Itinerary is the generated trip plan. It is never edited in place;
// regenerating produces a new value.
type Itinerary struct {
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	Duration    string    `json:"duration"`
	Budget      string    `json:"budget"`
	TravelType  string    `json:"travelType"`
	Days        []DayPlan `json:"days"`
	Highlights  []string  `json:"highlights"`
}

// Encode returns the persisted text form of the itinerary.
func (it Itinerary) Encode() (string, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeItinerary parses the persisted text form produced by Encode.
func DecodeItinerary(data string) (Itinerary, error) {
	var it Itinerary
	err := json.Unmarshal([]byte(data), &it)
	return it, err
}

// ActivityCount returns the number of activities across all days.
func (it Itinerary) ActivityCount() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Activities)
	}
	return n
}

// SavedItinerary is an itinerary stored for a user, with the summary columns
// used for listing.
type SavedItinerary struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	Destination      string    `json:"destination"`
	StartingLocation string    `json:"startingLocation"`
	Duration         string    `json:"duration"`
	Budget           string    `json:"budget"`
	TravelType       string    `json:"travelType"`
	Itinerary        Itinerary `json:"itinerary"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ItinerarySummary is a listing row returned by search.
type ItinerarySummary struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	Destination      string    `json:"destination"`
	StartingLocation string    `json:"startingLocation"`
	Duration         string    `json:"duration"`
	Budget           string    `json:"budget"`
	TravelType       string    `json:"travelType"`
	Highlights       []string  `json:"highlights,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Summary drops the full document.
func (s SavedItinerary) Summary() ItinerarySummary {
	return ItinerarySummary{
		ID:               s.ID,
		UserID:           s.UserID,
		Title:            s.Title,
		Destination:      s.Destination,
		StartingLocation: s.StartingLocation,
		Duration:         s.Duration,
		Budget:           s.Budget,
		TravelType:       s.TravelType,
		Highlights:       s.Itinerary.Highlights,
		CreatedAt:        s.CreatedAt,
	}
}
