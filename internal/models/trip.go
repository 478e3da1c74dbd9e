// internal/models/trip.go
package models

// Budget levels accepted on a trip request.
const (
	BudgetLow      = "Low"
	BudgetModerate = "Moderate"
	BudgetLuxury   = "Luxury"
)

const (
	TravelSolo   = "Solo"
	TravelCouple = "Couple"
	TravelFamily = "Family"
	TravelGroup  = "Group"
)

const (
	PaceRelaxed  = "Relaxed"
	PaceBalanced = "Balanced"
	PacePacked   = "Packed"
)

const (
	AccommodationHotel    = "Hotel"
	AccommodationHostel   = "Hostel"
	AccommodationResort   = "Resort"
	AccommodationHomestay = "Homestay"
)

const (
	TransportPublic = "Public Transport"
	TransportRental = "Rental Car"
	TransportWalk   = "Walk"
)

const (
	MealVeg          = "Veg"
	MealNonVeg       = "Non-Veg"
	MealNoPreference = "No preference"
)

const (
	MinTripDays = 1
	MaxTripDays = 30
)

var (
	Budgets         = []string{BudgetLow, BudgetModerate, BudgetLuxury}
	TravelTypes     = []string{TravelSolo, TravelCouple, TravelFamily, TravelGroup}
	Paces           = []string{PaceRelaxed, PaceBalanced, PacePacked}
	Accommodations  = []string{AccommodationHotel, AccommodationHostel, AccommodationResort, AccommodationHomestay}
	Transportations = []string{TransportPublic, TransportRental, TransportWalk}
	MealPreferences = []string{MealVeg, MealNonVeg, MealNoPreference}
)

// TripRequest is the validated set of trip parameters a user submits.
// Values are only constructed by validation.ValidateTripRequest and are not
// modified afterwards.
type TripRequest struct {
	Destination      string   `json:"destination"`
	StartingLocation string   `json:"startingLocation"`
	Days             int      `json:"days"`
	Budget           string   `json:"budget"`
	TravelType       string   `json:"travelType"`
	Interests        []string `json:"interests"`
	Pace             string   `json:"pace"`
	Accommodation    string   `json:"accommodation"`
	Transportation   string   `json:"transportation"`
	MealPreference   string   `json:"mealPreference"`
}
