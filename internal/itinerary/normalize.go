package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults substituted for missing visit fields.
const (
	DefaultDurationHours = 2.0
	DefaultContact       = "N/A"
	DefaultName          = "Unknown Place"
	DefaultCategory      = "General"
	DefaultRegion        = "Sri Lanka"
)

// Numbers beyond these bounds are treated as missing.
const (
	maxMagnitude = 1e12
	maxCount     = 10000
)

// DefaultCoordinates is used when a visit carries no usable position (Colombo).
var DefaultCoordinates = Coordinates{Lat: 6.9271, Lon: 79.8612}

// ErrNotJSON is returned by DecodeRaw when the body cannot be parsed at all.
var ErrNotJSON = errors.New("itinerary response is not valid JSON")

// layout lists, per response shape, the keys each normalized field may be read from.
type layout struct {
	container   string
	title       []string
	totalDays   []string
	travelStyle []string
	interests   []string
	dayNumber   []string
	date        []string
	placeID     []string
	name        []string
	category    []string
	region      []string
	description []string
	lat         []string
	lon         []string
	order       []string
	price       []string
	duration    []string
	start       []string
	end         []string
	contact     []string
	distance    []string
	travel      []string
}

var layouts = map[Shape]layout{
	ShapeDays: {
		container:   "days",
		title:       []string{"title"},
		totalDays:   []string{"totalDays"},
		travelStyle: []string{"travelStyle", "activityLevel"},
		interests:   []string{"interests"},
		dayNumber:   []string{"dayNumber", "day"},
		date:        []string{"date"},
		placeID:     []string{"placeId"},
		name:        []string{"placeName", "name"},
		category:    []string{"category"},
		region:      []string{"district", "region"},
		description: []string{"description"},
		lat:         []string{"latitude", "lat"},
		lon:         []string{"longitude", "lon", "lng"},
		order:       []string{"visitOrder"},
		price:       []string{"totalEntryCost", "ticketPrice", "entryCost"},
		duration:    []string{"estimatedVisitDurationHours", "visitDurationHours"},
		start:       []string{"arrivalTime", "startTime"},
		end:         []string{"departureTime", "endTime"},
		contact:     []string{"contactNo", "contact"},
		distance:    []string{"distanceFromPreviousKm"},
		travel:      []string{"travelTimeFromPreviousHours"},
	},
	ShapeDailyItinerary: {
		container:   "daily_itinerary",
		title:       []string{"title"},
		totalDays:   []string{"total_days"},
		travelStyle: []string{"travel_style"},
		interests:   []string{"interests"},
		dayNumber:   []string{"day", "day_number"},
		date:        []string{"date"},
		placeID:     []string{"Place_id", "place_id"},
		name:        []string{"Place", "Name"},
		category:    []string{"Category"},
		region:      []string{"District", "Region"},
		description: []string{"Description"},
		lat:         []string{"Latitude"},
		lon:         []string{"Longitude"},
		order:       []string{"visit_order"},
		price:       []string{"Ticket_price", "Entry_fee"},
		duration:    []string{"Eestimated_time_to_visit", "Estimated_time_to_visit"},
		start:       []string{"start_time"},
		end:         []string{"end_time"},
		contact:     []string{"Contact_no", "Contact"},
		distance:    []string{"distance_from_previous_km"},
		travel:      []string{"travel_time_from_previous_hours"},
	},
	ShapeDailyPlans: {
		container:   "daily_plans",
		title:       []string{"title"},
		totalDays:   []string{"total_days", "duration_days"},
		travelStyle: []string{"travel_style"},
		interests:   []string{"interests"},
		dayNumber:   []string{"day", "day_number"},
		date:        []string{"date"},
		placeID:     []string{"place_id"},
		name:        []string{"name", "place_name"},
		category:    []string{"category"},
		region:      []string{"district", "region"},
		description: []string{"description"},
		lat:         []string{"latitude"},
		lon:         []string{"longitude"},
		order:       []string{"visit_order"},
		price:       []string{"ticket_price", "entry_fee"},
		duration:    []string{"estimated_time_to_visit", "visit_duration_hours"},
		start:       []string{"start_time", "arrival_time"},
		end:         []string{"end_time", "departure_time"},
		contact:     []string{"contact_no", "contact"},
		distance:    []string{"distance_from_previous_km"},
		travel:      []string{"travel_time_from_previous_hours"},
	},
}

// unknownLayout reads a bare list of days using every alias known to any shape.
var unknownLayout = func() layout {
	merge := func(get func(layout) []string) []string {
		var keys []string
		for _, s := range []Shape{ShapeDays, ShapeDailyItinerary, ShapeDailyPlans} {
			keys = append(keys, get(layouts[s])...)
		}
		return keys
	}
	return layout{
		title:       merge(func(l layout) []string { return l.title }),
		totalDays:   merge(func(l layout) []string { return l.totalDays }),
		travelStyle: merge(func(l layout) []string { return l.travelStyle }),
		interests:   merge(func(l layout) []string { return l.interests }),
		dayNumber:   merge(func(l layout) []string { return l.dayNumber }),
		date:        merge(func(l layout) []string { return l.date }),
		placeID:     merge(func(l layout) []string { return l.placeID }),
		name:        merge(func(l layout) []string { return l.name }),
		category:    merge(func(l layout) []string { return l.category }),
		region:      merge(func(l layout) []string { return l.region }),
		description: merge(func(l layout) []string { return l.description }),
		lat:         merge(func(l layout) []string { return l.lat }),
		lon:         merge(func(l layout) []string { return l.lon }),
		order:       merge(func(l layout) []string { return l.order }),
		price:       merge(func(l layout) []string { return l.price }),
		duration:    merge(func(l layout) []string { return l.duration }),
		start:       merge(func(l layout) []string { return l.start }),
		end:         merge(func(l layout) []string { return l.end }),
		contact:     merge(func(l layout) []string { return l.contact }),
		distance:    merge(func(l layout) []string { return l.distance }),
		travel:      merge(func(l layout) []string { return l.travel }),
	}
}()

type object map[string]json.RawMessage

// DecodeRaw tags body with the response shape it uses. It fails only when the
// body is not JSON; an unrecognized JSON document yields ShapeUnknown.
func DecodeRaw(body []byte) (RawResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return RawResponse{}, ErrNotJSON
	}
	raw := RawResponse{Shape: ShapeUnknown, Body: json.RawMessage(trimmed)}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		raw.Shape = ShapeDays
		return raw, nil
	}

	var root object
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return raw, nil
	}
	if shape, _ := detect(root); shape != ShapeUnknown {
		raw.Shape = shape
	}
	return raw, nil
}

// detect finds the object that carries a distinguishing list, looking one
// level down under "itinerary" or "data" for wrapped responses.
func detect(root object) (Shape, object) {
	for _, s := range []Shape{ShapeDays, ShapeDailyItinerary, ShapeDailyPlans} {
		if isArray(root[layouts[s].container]) {
			return s, root
		}
	}
	for _, wrapper := range []string{"itinerary", "data"} {
		var inner object
		if err := json.Unmarshal(root[wrapper], &inner); err != nil || inner == nil {
			continue
		}
		if s, obj := detect(inner); s != ShapeUnknown {
			return s, obj
		}
	}
	return ShapeUnknown, nil
}

// Normalize maps a raw response of any known shape into the display model.
// It never fails: missing or malformed fields fall back to defaults and
// entries that are not objects are skipped.
func Normalize(raw RawResponse) Itinerary {
	it := Itinerary{Days: []Day{}}

	var (
		root    object
		dayList []json.RawMessage
		lay     layout
	)

	body := bytes.TrimSpace(raw.Body)
	if len(body) > 0 && body[0] == '[' {
		_ = json.Unmarshal(body, &dayList)
		lay = unknownLayout
	} else {
		var top object
		_ = json.Unmarshal(body, &top)
		shape, container := detect(top)
		if shape == ShapeUnknown {
			return it
		}
		root, lay = container, layouts[shape]
		_ = json.Unmarshal(root[lay.container], &dayList)

		// Wrapped responses keep some headers beside the wrapper.
		if _, ok := pick(root, lay.title); !ok {
			root = mergeHeaders(top, root)
		}
	}

	if root != nil {
		it.Title = stringField(root, lay.title, "")
		if n, ok := countField(root, lay.totalDays); ok {
			it.TotalDays = n
		}
		it.TravelStyle = stringField(root, lay.travelStyle, "")
		it.Interests = stringList(root, lay.interests)
	}

	for i, rawDay := range dayList {
		var d object
		if err := json.Unmarshal(rawDay, &d); err != nil || d == nil {
			continue
		}
		it.Days = append(it.Days, normalizeDay(d, lay, i+1))
	}

	if it.TotalDays == 0 {
		it.TotalDays = len(it.Days)
	}
	return it
}

func mergeHeaders(outer, inner object) object {
	merged := make(object, len(outer)+len(inner))
	for k, v := range outer {
		merged[k] = v
	}
	for k, v := range inner {
		merged[k] = v
	}
	return merged
}

func normalizeDay(d object, lay layout, position int) Day {
	day := Day{Number: position, Visits: []Visit{}}
	if n, ok := countField(d, lay.dayNumber); ok {
		day.Number = n
	}
	day.Date = dateField(d, lay.date)

	var places []json.RawMessage
	_ = json.Unmarshal(d["places"], &places)
	for _, rawPlace := range places {
		var p object
		if err := json.Unmarshal(rawPlace, &p); err != nil || p == nil {
			continue
		}
		day.Visits = append(day.Visits, normalizeVisit(p, lay, len(day.Visits)+1))
	}
	return day
}

func normalizeVisit(p object, lay layout, position int) Visit {
	v := Visit{
		Order:         position,
		PlaceID:       stringField(p, lay.placeID, ""),
		Name:          stringField(p, lay.name, DefaultName),
		Category:      stringField(p, lay.category, DefaultCategory),
		Region:        stringField(p, lay.region, DefaultRegion),
		Description:   stringField(p, lay.description, ""),
		Coordinates:   DefaultCoordinates,
		DurationHours: DefaultDurationHours,
		Contact:       stringField(p, lay.contact, DefaultContact),
		Window: TimeWindow{
			Start: clockField(p, lay.start),
			End:   clockField(p, lay.end),
		},
	}

	if n, ok := countField(p, lay.order); ok {
		v.Order = n
	}

	lat, latOK := numberField(p, lay.lat)
	lon, lonOK := numberField(p, lay.lon)
	if latOK && lonOK && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
		v.Coordinates = Coordinates{Lat: lat, Lon: lon}
	}

	if price, ok := numberField(p, lay.price); ok && price > 0 {
		v.Price = price
	}
	if dur, ok := numberField(p, lay.duration); ok && dur > 0 {
		v.DurationHours = dur
	}
	if dist, ok := numberField(p, lay.distance); ok && dist >= 0 {
		v.DistanceFromPreviousKm = &dist
	}
	if hours, ok := numberField(p, lay.travel); ok && hours >= 0 {
		v.TravelHoursFromPrevious = &hours
	}
	return v
}

// pick returns the first present, non-null value among keys. Exact key matches
// win; a case-insensitive match is tried afterwards.
func pick(o object, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && !isNull(v) {
			return v, true
		}
	}
	for _, k := range keys {
		for actual, v := range o {
			if strings.EqualFold(actual, k) && !isNull(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func isArray(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) > 0 && t[0] == '['
}

func stringField(o object, keys []string, fallback string) string {
	v, ok := pick(o, keys)
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return fallback
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return fallback
}

// numberField accepts JSON numbers and numeric strings such as "1,500".
// Non-finite and implausibly large values count as missing.
func numberField(o object, keys []string) (float64, bool) {
	v, ok := pick(o, keys)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxMagnitude {
		return 0, false
	}
	return f, true
}

// countField reads a positive whole count such as a day number or visit order.
func countField(o object, keys []string) (int, bool) {
	f, ok := numberField(o, keys)
	if !ok || f < 1 || f > maxCount {
		return 0, false
	}
	return int(f), true
}

func stringList(o object, keys []string) []string {
	v, ok := pick(o, keys)
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal(v, &list); err == nil {
		return list
	}
	var joined string
	if err := json.Unmarshal(v, &joined); err == nil && strings.TrimSpace(joined) != "" {
		for _, part := range strings.Split(joined, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
	}
	return list
}

// clockField reads "HH:MM", "HH:MM:SS" or [h, m, s] and renders "HH:MM".
func clockField(o object, keys []string) string {
	v, ok := pick(o, keys)
	if !ok {
		return ""
	}

	var parts []int
	if err := json.Unmarshal(v, &parts); err == nil {
		if len(parts) < 2 {
			return ""
		}
		return formatClock(parts[0], parts[1])
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) < 2 {
		return ""
	}
	h, errH := strconv.Atoi(fields[0])
	m, errM := strconv.Atoi(fields[1])
	if errH != nil || errM != nil {
		return ""
	}
	return formatClock(h, m)
}

func formatClock(h, m int) string {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// dateField reads "YYYY-MM-DD" strings, free-form labels like "Day 1", or [y, m, d].
func dateField(o object, keys []string) string {
	v, ok := pick(o, keys)
	if !ok {
		return ""
	}
	var parts []int
	if err := json.Unmarshal(v, &parts); err == nil {
		if len(parts) < 3 {
			return ""
		}
		return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2])
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
