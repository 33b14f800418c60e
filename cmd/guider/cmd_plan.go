package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/neexbeast/travelguider/internal/itinerary"
	"github.com/neexbeast/travelguider/internal/planner"
)

func newPlanCmd(a *app) *cobra.Command {
	var form itinerary.TripForm
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an itinerary",
		Example: `  guider plan --from 2025-03-01 --to 2025-03-03 --location Colombo \
    --adults 2 --transport public --activity moderate --category Beach --category Culture`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := itinerary.ParseFormat(output); err != nil && output != "table" {
				return err
			}

			view, err := planner.New(a.client, a.log).Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			return writeView(a.out, view, output)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Title, "title", "", "trip title (default \"Trip from <location>\")")
	f.StringVar(&form.StartDate, "from", "", "start date, YYYY-MM-DD")
	f.StringVar(&form.EndDate, "to", "", "end date, YYYY-MM-DD")
	f.StringVar(&form.StartLocation, "location", "", "starting location")
	f.IntVar(&form.Adults, "adults", 1, "number of adults")
	f.IntVar(&form.Children, "children", 0, "number of children")
	f.IntVar(&form.Students, "students", 0, "number of students")
	f.IntVar(&form.Foreigners, "foreigners", 0, "number of foreign travelers")
	f.StringVar(&form.Transport, "transport", "public", "public or private")
	f.StringVar(&form.ActivityLevel, "activity", "moderate", "relaxed, moderate or active")
	f.StringSliceVar(&form.Categories, "category", nil, "preferred place category (repeatable)")
	f.StringSliceVar(&form.Interests, "interest", nil, "specific interest (repeatable)")
	f.StringVar(&form.BudgetRange, "budget", "", "budget range label")
	f.BoolVar(&form.IncludeWeather, "weather", false, "ask for weather information")
	f.StringVarP(&output, "output", "o", "table", "table, json or yaml")

	return cmd
}

// writeView prints a generated itinerary in the requested format.
func writeView(w io.Writer, view *planner.View, output string) error {
	it := view.Itinerary
	if it.Title == "" {
		it.Title = view.Request.Title
	}
	if output == "table" {
		writeItineraryTable(w, it, view.Summary)
		return nil
	}
	format, err := itinerary.ParseFormat(output)
	if err != nil {
		return err
	}
	if err := itinerary.Export(w, it, format); err != nil {
		return fmt.Errorf("writing itinerary: %w", err)
	}
	return nil
}
