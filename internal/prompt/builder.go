// internal/prompt/builder.go
package prompt

import (
	"fmt"
	"strings"

	"planmytrip/internal/models"
)

// Instructions is the pair of messages sent to the model.
type Instructions struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Build renders a validated trip request. It is deterministic and never
// fails; the same request always yields the same instructions.
func Build(req models.TripRequest) Instructions {
	return Instructions{
		System: systemInstruction,
		User:   userInstruction(req),
	}
}

// ActivitiesPerDay maps a pace to the activity density requested.
func ActivitiesPerDay(pace string) string {
	switch pace {
	case models.PacePacked:
		return "5-7"
	case models.PaceBalanced:
		return "4-5"
	default:
		return "3-4"
	}
}

// MealGuidance maps a meal preference to prompt phrasing.
func MealGuidance(pref string) string {
	if pref == models.MealNoPreference || pref == "" {
		return "Include both vegetarian and non-vegetarian options without specifying restaurant type"
	}
	return fmt.Sprintf("Focus on %s restaurants and food", pref)
}

func userInstruction(req models.TripRequest) string {
	interests := strings.Join(req.Interests, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day itinerary from %s to %s.\n\n", req.Days, req.StartingLocation, req.Destination)

	fmt.Fprintf(&b, "Budget: %s\n", req.Budget)
	fmt.Fprintf(&b, "Travel type: %s\n", req.TravelType)
	fmt.Fprintf(&b, "Starting location: %s\n", req.StartingLocation)
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "User is interested in: %s activities\n", interests)
	fmt.Fprintf(&b, "Pace: %s, include %s activities per day\n", req.Pace, ActivitiesPerDay(req.Pace))
	fmt.Fprintf(&b, "Accommodation: suggest %s style stays\n", req.Accommodation)
	fmt.Fprintf(&b, "Transportation: plan around %s\n", req.Transportation)
	fmt.Fprintf(&b, "Meal preference: %s\n\n", MealGuidance(req.MealPreference))

	b.WriteString("For the \"type\" field, use natural, descriptive categories like:\n")
	for _, c := range typeCategories {
		quoted := make([]string, len(c.Examples))
		for i, ex := range c.Examples {
			quoted[i] = `"` + ex + `"`
		}
		fmt.Fprintf(&b, "- %s: %s\n", c.Bucket, strings.Join(quoted, ", "))
	}

	fmt.Fprintf(&b, "\nFocus heavily on the user's interests: %s.\n\n", interests)

	b.WriteString("IMPORTANT:\n")
	fmt.Fprintf(&b, "- Day 1 must start from %s with travel arrangements to %s\n", req.StartingLocation, req.Destination)
	b.WriteString("- Include travel time and transportation details from starting location\n")
	fmt.Fprintf(&b, "- Create exactly %d days, numbered from 1\n", req.Days)
	b.WriteString("- Create a natural flow of activities, meals, and rest periods\n")
	b.WriteString("- Every activity must include a \"details\" field explaining what makes it special and what to expect\n")
	fmt.Fprintf(&b, "- Make it perfect for %s travelers at a %s budget, with a creative title and 4-6 key highlights", req.TravelType, req.Budget)

	return b.String()
}
