// internal/render/view.go
package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"planmytrip/internal/models"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ActivityView struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Badge       string `json:"badge"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}

type DayView struct {
	Day        int            `json:"day"`
	Heading    string         `json:"heading"`
	Activities []ActivityView `json:"activities"`
}

// View is a display-ready rendition of an itinerary.
type View struct {
	Title      string    `json:"title"`
	Overview   []Field   `json:"overview"`
	Highlights []string  `json:"highlights"`
	Days       []DayView `json:"days"`
}

func Render(it models.Itinerary) View {
	v := View{
		Title: it.Title,
		Overview: []Field{
			{Label: "Destination", Value: it.Destination},
			{Label: "Duration", Value: it.Duration},
			{Label: "Budget", Value: it.Budget},
			{Label: "Travel Type", Value: it.TravelType},
		},
		Highlights: append([]string(nil), it.Highlights...),
		Days:       make([]DayView, 0, len(it.Days)),
	}

	for _, d := range it.Days {
		dv := DayView{
			Day:        d.Day,
			Heading:    fmt.Sprintf("Day %d: %s", d.Day, d.Title),
			Activities: make([]ActivityView, 0, len(d.Activities)),
		}
		for _, a := range d.Activities {
			dv.Activities = append(dv.Activities, ActivityView{
				Time:        a.Time,
				Title:       a.Title,
				Badge:       Badge(a.Type),
				Description: a.Description,
				Details:     a.Details,
			})
		}
		v.Days = append(v.Days, dv)
	}
	return v
}

// Badge capitalises the first letter of an activity type.
func Badge(activityType string) string {
	r, size := utf8.DecodeRuneInString(activityType)
	if r == utf8.RuneError {
		return activityType
	}
	return string(unicode.ToUpper(r)) + activityType[size:]
}

// Text is the plain-text form used in emails.
func (v View) Text() string {
	var b strings.Builder
	b.WriteString(v.Title + "\n")
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(v.Title)) + "\n\n")

	for _, f := range v.Overview {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}

	if len(v.Highlights) > 0 {
		b.WriteString("\nTrip Highlights\n")
		for _, h := range v.Highlights {
			fmt.Fprintf(&b, "  * %s\n", h)
		}
	}

	for _, d := range v.Days {
		fmt.Fprintf(&b, "\n%s\n", d.Heading)
		for _, a := range d.Activities {
			fmt.Fprintf(&b, "  %s  %s [%s]\n", a.Time, a.Title, a.Badge)
			if a.Description != "" {
				fmt.Fprintf(&b, "      %s\n", a.Description)
			}
			if a.Details != "" {
				fmt.Fprintf(&b, "      %s\n", a.Details)
			}
		}
	}
	return b.String()
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Filename returns the download name for an exported itinerary.
func Filename(it models.Itinerary) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(it.Destination), "_") + "_itinerary.pdf"
}
