package itinerary

import "encoding/json"

// TripForm is the trip-planning form state as entered by a traveler.
// Dates are kept as the raw "YYYY-MM-DD" strings the date inputs produce.
type TripForm struct {
	Title          string   `json:"title"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	StartLocation  string   `json:"start_location"`
	Adults         int      `json:"adults"`
	Children       int      `json:"children"`
	Students       int      `json:"students"`
	Foreigners     int      `json:"foreigners"`
	Transport      string   `json:"transport"`
	ActivityLevel  string   `json:"activity_level"`
	Categories     []string `json:"categories"`
	Interests      []string `json:"interests"`
	BudgetRange    string   `json:"budget_range"`
	IncludeWeather bool     `json:"include_weather"`
}

// TripRequest is the JSON body the itinerary generation endpoint expects.
type TripRequest struct {
	Title               string      `json:"title"`
	StartDate           string      `json:"startDate"`
	EndDate             string      `json:"endDate"`
	TotalDays           int         `json:"totalDays"`
	StartingLocation    string      `json:"startingLocation"`
	AdultsCount         int         `json:"adultsCount"`
	ChildrenCount       int         `json:"childrenCount"`
	StudentsCount       int         `json:"studentsCount"`
	ForeignersCount     int         `json:"foreignersCount"`
	BudgetRange         string      `json:"budgetRange,omitempty"`
	TransportPreference string      `json:"transportPreference"`
	ActivityLevel       string      `json:"activityLevel"`
	PreferredCategories CategorySet `json:"preferredCategories"`
	SpecificInterests   []string    `json:"specificInterests"`
	IncludeWeather      bool        `json:"includeWeather"`
}

// Shape identifies which of the known backend response layouts a body uses.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeDays is the persisted itinerary layout: days[].places[] with camelCase fields.
	ShapeDays
	// ShapeDailyItinerary is the optimizer layout: daily_itinerary[].places[] with CSV column names.
	ShapeDailyItinerary
	// ShapeDailyPlans is the ML API layout: daily_plans[].places[] with snake_case fields.
	ShapeDailyPlans
)

func (s Shape) String() string {
	switch s {
	case ShapeDays:
		return "days"
	case ShapeDailyItinerary:
		return "daily_itinerary"
	case ShapeDailyPlans:
		return "daily_plans"
	default:
		return "unknown"
	}
}

// RawResponse is an undecoded generation response tagged with its detected shape.
type RawResponse struct {
	Shape Shape
	Body  json.RawMessage
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// TimeWindow holds "HH:MM" clock times; either side may be empty.
type TimeWindow struct {
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Visit is one stop of an itinerary day in the normalized display model.
type Visit struct {
	Order                   int         `json:"order" yaml:"order"`
	PlaceID                 string      `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	Name                    string      `json:"name" yaml:"name"`
	Category                string      `json:"category" yaml:"category"`
	Region                  string      `json:"region" yaml:"region"`
	Description             string      `json:"description,omitempty" yaml:"description,omitempty"`
	Coordinates             Coordinates `json:"coordinates" yaml:"coordinates"`
	Price                   float64     `json:"price" yaml:"price"`
	DurationHours           float64     `json:"duration_hours" yaml:"duration_hours"`
	Window                  TimeWindow  `json:"window" yaml:"window"`
	Contact                 string      `json:"contact" yaml:"contact"`
	DistanceFromPreviousKm  *float64    `json:"distance_from_previous_km,omitempty" yaml:"distance_from_previous_km,omitempty"`
	TravelHoursFromPrevious *float64    `json:"travel_hours_from_previous,omitempty" yaml:"travel_hours_from_previous,omitempty"`
}

// Day is one day of a normalized itinerary.
type Day struct {
	Number int     `json:"day_number" yaml:"day_number"`
	Date   string  `json:"date,omitempty" yaml:"date,omitempty"`
	Visits []Visit `json:"places" yaml:"places"`
}

// Itinerary is the uniform display model every response shape normalizes into.
type Itinerary struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	TotalDays   int      `json:"total_days" yaml:"total_days"`
	TravelStyle string   `json:"travel_style,omitempty" yaml:"travel_style,omitempty"`
	Interests   []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	Days        []Day    `json:"days" yaml:"days"`
}

// Summary aggregates a normalized itinerary. It is always derived, never stored upstream.
type Summary struct {
	TotalBudget     float64 `json:"total_budget" yaml:"total_budget"`
	TotalDistanceKm float64 `json:"total_distance_km" yaml:"total_distance_km"`
	TotalPlaces     int     `json:"total_places" yaml:"total_places"`
	TotalDays       int     `json:"total_days" yaml:"total_days"`
}
