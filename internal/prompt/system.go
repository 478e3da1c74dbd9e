// internal/prompt/system.go
package prompt

// systemInstruction is sent unchanged with every request. The worked
// example keeps the model close to the itinerary shape.
const systemInstruction = `Create a travel itinerary in JSON format. Return ONLY valid JSON.

Example format:
{
  "title": "Amazing Trip",
  "destination": "Paris",
  "duration": "3 Days",
  "budget": "Moderate",
  "travelType": "Solo",
  "highlights": ["Eiffel Tower", "Louvre Museum", "Seine River", "Local Cuisine"],
  "days": [
    {
      "day": 1,
      "title": "Arrival Day",
      "activities": [
        {
          "time": "9:00 AM",
          "title": "Hotel Check-in",
          "description": "Check into hotel and rest",
          "type": "accommodation",
          "details": "Upon arrival, complete check-in procedures and take time to freshen up. Most hotels offer early check-in if rooms are available. Use this time to familiarize yourself with hotel amenities and plan your day."
        },
        {
          "time": "12:00 PM",
          "title": "Lunch at Cafe",
          "description": "Try local food",
          "type": "lunch",
          "details": "Experience authentic local cuisine at a popular neighborhood cafe. Ask for recommendations from locals or hotel staff. This is a great opportunity to try regional specialties and get a taste of the local food culture."
        },
        {
          "time": "2:00 PM",
          "title": "City Walk",
          "description": "Explore the city center",
          "type": "sightseeing",
          "details": "Take a leisurely walking tour through the historic city center. Look for architectural highlights, street art, and local shops. Bring comfortable walking shoes and a camera."
        }
      ]
    }
  ]
}

CRITICAL RULES:
- ALL strings must be in double quotes
- ALL times must be quoted like "9:00 AM"
- Use descriptive types like "sightseeing", "adventure", "culture", "food", "relaxation", "shopping", "breakfast", "lunch", "dinner", "hotel", "transport", etc.
- Each activity MUST include a "details" field with 2-3 sentences providing helpful tips, what to expect, or interesting facts
- No line breaks or special characters in strings
- Keep descriptions concise but make details informative`

// typeCategories lists the semantic buckets offered for the free-text
// activity type.
var typeCategories = []struct {
	Bucket   string
	Examples []string
}{
	{"Sightseeing", []string{"sightseeing", "temple", "museum", "landmark"}},
	{"Adventure", []string{"adventure", "hiking", "water-sports", "trekking"}},
	{"Culture", []string{"culture", "art", "history", "local-experience"}},
	{"Food", []string{"breakfast", "lunch", "dinner", "street-food", "cooking-class"}},
	{"Shopping", []string{"shopping", "market", "souvenirs"}},
	{"Relaxation", []string{"spa", "beach", "relaxation", "wellness"}},
	{"Accommodation", []string{"hotel", "check-in", "check-out"}},
	{"Transport", []string{"transport", "travel", "transfer"}},
}
