package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidationError reports a form field that failed client-side checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// transportValues maps UI transport labels to the values the backend keys its
// travel-time and transport-cost tables on.
var transportValues = map[string]string{
	"public":  "bus",
	"private": "car",
}

// activityStyles maps UI activity levels to the optimizer's travel styles.
var activityStyles = map[string]string{
	"relaxed":  "Relaxed",
	"moderate": "Moderate",
	"active":   "Adventure",
}

// CategorySet is a set of category tags that remembers insertion order for display.
type CategorySet []string

// NewCategorySet builds a set from tags, dropping blanks and case-insensitive duplicates.
func NewCategorySet(tags ...string) CategorySet {
	var s CategorySet
	for _, t := range tags {
		s = s.Add(t)
	}
	return s
}

// Add returns the set with tag appended unless it is blank or already present.
func (s CategorySet) Add(tag string) CategorySet {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.Contains(tag) {
		return s
	}
	return append(s, tag)
}

// Remove returns the set without tag.
func (s CategorySet) Remove(tag string) CategorySet {
	out := make(CategorySet, 0, len(s))
	for _, t := range s {
		if !strings.EqualFold(t, tag) {
			out = append(out, t)
		}
	}
	return out
}

// Contains reports whether tag is in the set, ignoring case.
func (s CategorySet) Contains(tag string) bool {
	for _, t := range s {
		if strings.EqualFold(t, strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes an empty set as [] rather than null.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// BuildRequest validates form and translates it into the backend request shape.
// It never touches the network; any failure is a *ValidationError.
func BuildRequest(form TripForm) (TripRequest, error) {
	if strings.TrimSpace(form.StartDate) == "" {
		return TripRequest{}, invalid("start_date", "Please select a start date")
	}
	if strings.TrimSpace(form.EndDate) == "" {
		return TripRequest{}, invalid("end_date", "Please select an end date")
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(form.StartDate))
	if err != nil {
		return TripRequest{}, invalid("start_date", "Start date %q is not a valid date", form.StartDate)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(form.EndDate))
	if err != nil {
		return TripRequest{}, invalid("end_date", "End date %q is not a valid date", form.EndDate)
	}
	if end.Before(start) {
		return TripRequest{}, invalid("end_date", "End date cannot be before start date")
	}

	location := strings.TrimSpace(form.StartLocation)
	if location == "" {
		return TripRequest{}, invalid("start_location", "Please choose a starting location")
	}

	if form.Adults < 1 {
		return TripRequest{}, invalid("adults", "At least one adult is required")
	}
	for _, c := range []struct {
		field string
		n     int
	}{
		{"children", form.Children},
		{"students", form.Students},
		{"foreigners", form.Foreigners},
	} {
		if c.n < 0 {
			return TripRequest{}, invalid(c.field, "Number of %s cannot be negative", c.field)
		}
	}

	transport, ok := transportValues[strings.ToLower(strings.TrimSpace(form.Transport))]
	if !ok {
		return TripRequest{}, invalid("transport", "Unknown transport mode %q", form.Transport)
	}

	level := strings.ToLower(strings.TrimSpace(form.ActivityLevel))
	if level == "" {
		level = "moderate"
	}
	style, ok := activityStyles[level]
	if !ok {
		return TripRequest{}, invalid("activity_level", "Unknown activity level %q", form.ActivityLevel)
	}

	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = "Trip from " + location
	}

	interests := form.Interests
	if interests == nil {
		interests = []string{}
	}

	return TripRequest{
		Title:               title,
		StartDate:           start.Format(dateLayout),
		EndDate:             end.Format(dateLayout),
		TotalDays:           InclusiveDays(start, end),
		StartingLocation:    location,
		AdultsCount:         form.Adults,
		ChildrenCount:       form.Children,
		StudentsCount:       form.Students,
		ForeignersCount:     form.Foreigners,
		BudgetRange:         strings.TrimSpace(form.BudgetRange),
		TransportPreference: transport,
		ActivityLevel:       style,
		PreferredCategories: NewCategorySet(form.Categories...),
		SpecificInterests:   interests,
		IncludeWeather:      form.IncludeWeather,
	}, nil
}

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
