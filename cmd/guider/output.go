package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/neexbeast/travelguider/internal/backend"
	"github.com/neexbeast/travelguider/internal/itinerary"
	"github.com/neexbeast/travelguider/internal/planner"
)

func writeItineraryTable(w io.Writer, it itinerary.Itinerary, sum itinerary.Summary) {
	title := it.Title
	if title == "" {
		title = "Itinerary"
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%d days, %d places, budget LKR %s, about %s km\n\n",
		sum.TotalDays, sum.TotalPlaces, money(sum.TotalBudget), strconv.FormatFloat(sum.TotalDistanceKm, 'f', 1, 64))

	for _, day := range it.Days {
		heading := fmt.Sprintf("Day %d", day.Number)
		if day.Date != "" {
			heading += " (" + day.Date + ")"
		}
		fmt.Fprintln(w, heading)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Place", "Category", "Region", "Time", "Hours", "Price"})
		table.SetAutoWrapText(false)
		table.SetBorders(tablewriter.Border{Left: false, Right: false, Top: true, Bottom: true})
		for _, v := range day.Visits {
			table.Append([]string{
				strconv.Itoa(v.Order),
				v.Name,
				v.Category,
				v.Region,
				window(v.Window),
				strconv.FormatFloat(v.DurationHours, 'f', -1, 64),
				money(v.Price),
			})
		}
		table.Render()
		fmt.Fprintln(w)
	}
}

func writeDashboardTable(w io.Writer, d *backend.Dashboard) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Collection", "Count"})
	table.AppendBulk([][]string{
		{"Places", strconv.Itoa(d.Places)},
		{"Bus schedules", strconv.Itoa(d.Buses)},
		{"Train schedules", strconv.Itoa(d.Trains)},
	})
	table.Render()
}

func window(t itinerary.TimeWindow) string {
	switch {
	case t.Start != "" && t.End != "":
		return t.Start + "-" + t.End
	case t.Start != "":
		return "from " + t.Start
	case t.End != "":
		return "until " + t.End
	default:
		return "-"
	}
}

func money(v float64) string {
	if v == 0 {
		return "free"
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// describe renders err the way the traveler-facing screens do.
func describe(err error) string {
	var verr *itinerary.ValidationError
	var serr *backend.ServerError
	var cerr *backend.ConnectivityError
	if errors.As(err, &verr) || errors.As(err, &serr) || errors.As(err, &cerr) {
		return planner.UserMessage(err)
	}
	return err.Error()
}
