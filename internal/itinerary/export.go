package itinerary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding used by Export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", defaulting to JSON when empty.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// TripSummary is the header block of an exported itinerary.
type TripSummary struct {
	Title             string   `json:"title,omitempty" yaml:"title,omitempty"`
	TotalDays         int      `json:"total_days" yaml:"total_days"`
	TotalPlaces       int      `json:"total_places" yaml:"total_places"`
	TravelStyle       string   `json:"travel_style,omitempty" yaml:"travel_style,omitempty"`
	Interests         []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	EstimatedBudget   float64  `json:"estimated_budget" yaml:"estimated_budget"`
	EstimatedDistance float64  `json:"estimated_distance" yaml:"estimated_distance"`
}

// Document is the exported form of an itinerary.
type Document struct {
	TripSummary    TripSummary `json:"trip_summary" yaml:"trip_summary"`
	DailyItinerary []Day       `json:"daily_itinerary" yaml:"daily_itinerary"`
}

// NewDocument builds the export document for it, rounding the distance to whole kilometres.
func NewDocument(it Itinerary) Document {
	sum := Summarize(it)
	return Document{
		TripSummary: TripSummary{
			Title:             it.Title,
			TotalDays:         it.TotalDays,
			TotalPlaces:       sum.TotalPlaces,
			TravelStyle:       it.TravelStyle,
			Interests:         it.Interests,
			EstimatedBudget:   sum.TotalBudget,
			EstimatedDistance: float64(int64(sum.TotalDistanceKm + 0.5)),
		},
		DailyItinerary: it.Days,
	}
}

// Export writes it to w in the requested format.
func Export(w io.Writer, it Itinerary, format Format) error {
	doc := NewDocument(it)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding itinerary as yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding itinerary as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
