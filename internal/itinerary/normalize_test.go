package itinerary_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/travelguider/internal/itinerary"
)

const daysPayload = `{
  "id": 1718000000000,
  "title": "Southern Coast",
  "startDate": "2025-03-01",
  "endDate": "2025-03-02",
  "totalDays": 2,
  "status": "Generated by ML Model",
  "days": [
    {
      "dayNumber": 1,
      "date": "2025-03-01",
      "places": [
        {
          "placeId": "P001", "placeName": "Galle Fort", "category": "Culture",
          "district": "Galle", "description": "Dutch fort",
          "latitude": 6.0269, "longitude": 80.2170, "visitOrder": 1,
          "arrivalTime": "09:00:00", "departureTime": "11:00:00",
          "estimatedVisitDurationHours": 2.0, "totalEntryCost": 500
        },
        {
          "placeId": "P002", "placeName": "Unawatuna Beach", "category": "Beach",
          "district": "Galle", "latitude": 6.0100, "longitude": 80.2490,
          "visitOrder": 2, "arrivalTime": [11, 30], "departureTime": [14, 30],
          "estimatedVisitDurationHours": 3.0, "totalEntryCost": 0
        }
      ]
    },
    {
      "dayNumber": 2,
      "date": [2025, 3, 2],
      "places": [
        {
          "placeId": "P003", "placeName": "Yala National Park", "category": "Wildlife",
          "district": "Hambantota", "latitude": 6.3728, "longitude": 81.5169,
          "visitOrder": 1, "arrivalTime": "06:00", "departureTime": "10:00",
          "estimatedVisitDurationHours": 4, "totalEntryCost": 1500
        }
      ]
    }
  ]
}`

const dailyPlansPayload = `{
  "success": true,
  "itinerary": {
    "title": "Southern Coast",
    "total_days": 2,
    "daily_plans": [
      {
        "day": 1,
        "date": "2025-03-01",
        "places": [
          {
            "place_id": "P001", "name": "Galle Fort", "category": "Culture",
            "district": "Galle", "description": "Dutch fort",
            "latitude": 6.0269, "longitude": 80.2170,
            "start_time": "09:00", "end_time": "11:00",
            "estimated_time_to_visit": 2, "ticket_price": "500"
          },
          {
            "place_id": "P002", "name": "Unawatuna Beach", "category": "Beach",
            "district": "Galle", "latitude": 6.0100, "longitude": 80.2490,
            "start_time": "11:30", "end_time": "14:30",
            "estimated_time_to_visit": "3"
          }
        ]
      },
      {
        "day": 2,
        "date": "2025-03-02",
        "places": [
          {
            "place_id": "P003", "name": "Yala National Park", "category": "Wildlife",
            "district": "Hambantota", "latitude": 6.3728, "longitude": 81.5169,
            "start_time": "06:00", "end_time": "10:00",
            "estimated_time_to_visit": 4, "ticket_price": 1500
          }
        ]
      }
    ]
  }
}`

const dailyItineraryPayload = `{
  "success": true,
  "total_days": 3,
  "total_places": 1,
  "travel_style": "Cultural",
  "interests": ["Religious", "Historical"],
  "daily_itinerary": [
    {
      "day": 1,
      "date": "Day 1",
      "places": [
        {
          "Place": "Temple of the Tooth", "District": "Kandy", "Category": "Temple",
          "Description": "Sacred Buddhist temple",
          "Latitude": 7.2936, "Longitude": 80.6337,
          "Ticket_price": "1,500", "Eestimated_time_to_visit": "1.5",
          "Contact_no": "+94 81 223 4226",
          "start_time": "09:00", "end_time": "10:30"
        }
      ],
      "total_places": 1
    }
  ]
}`

func decode(t *testing.T, body string) itinerary.RawResponse {
	t.Helper()
	raw, err := itinerary.DecodeRaw([]byte(body))
	require.NoError(t, err)
	return raw
}

func TestDecodeRaw_DetectsShape(t *testing.T) {
	assert.Equal(t, itinerary.ShapeDays, decode(t, daysPayload).Shape)
	assert.Equal(t, itinerary.ShapeDailyPlans, decode(t, dailyPlansPayload).Shape)
	assert.Equal(t, itinerary.ShapeDailyItinerary, decode(t, dailyItineraryPayload).Shape)
	assert.Equal(t, itinerary.ShapeDays, decode(t, `[{"day":1,"places":[]}]`).Shape)
	assert.Equal(t, itinerary.ShapeUnknown, decode(t, `{"message":"ok"}`).Shape)
}

func TestDecodeRaw_NotJSON(t *testing.T) {
	_, err := itinerary.DecodeRaw([]byte("<html>Bad Gateway</html>"))
	require.ErrorIs(t, err, itinerary.ErrNotJSON)
}

func TestNormalize_DaysAndDailyPlansAreEquivalent(t *testing.T) {
	fromDays := itinerary.Normalize(decode(t, daysPayload))
	fromPlans := itinerary.Normalize(decode(t, dailyPlansPayload))

	if diff := cmp.Diff(fromDays, fromPlans); diff != "" {
		t.Fatalf("normalized itineraries differ (-days +daily_plans):\n%s", diff)
	}

	require.Len(t, fromDays.Days, 2)
	assert.Equal(t, "Southern Coast", fromDays.Title)
	assert.Equal(t, 2, fromDays.TotalDays)
	assert.Equal(t, "2025-03-02", fromDays.Days[1].Date)

	beach := fromDays.Days[0].Visits[1]
	assert.Equal(t, "Unawatuna Beach", beach.Name)
	assert.Equal(t, itinerary.TimeWindow{Start: "11:30", End: "14:30"}, beach.Window)
	assert.Equal(t, 3.0, beach.DurationHours)
	assert.Equal(t, 0.0, beach.Price)
}

func TestNormalize_DailyItineraryShape(t *testing.T) {
	it := itinerary.Normalize(decode(t, dailyItineraryPayload))

	assert.Equal(t, 3, it.TotalDays)
	assert.Equal(t, "Cultural", it.TravelStyle)
	assert.Equal(t, []string{"Religious", "Historical"}, it.Interests)
	require.Len(t, it.Days, 1)
	assert.Equal(t, "Day 1", it.Days[0].Date)

	v := it.Days[0].Visits[0]
	assert.Equal(t, "Temple of the Tooth", v.Name)
	assert.Equal(t, "Kandy", v.Region)
	assert.Equal(t, "Temple", v.Category)
	assert.Equal(t, 1500.0, v.Price)
	assert.Equal(t, 1.5, v.DurationHours)
	assert.Equal(t, "+94 81 223 4226", v.Contact)
	assert.Equal(t, itinerary.Coordinates{Lat: 7.2936, Lon: 80.6337}, v.Coordinates)
}

func TestNormalize_MissingOptionalFieldsUseDefaults(t *testing.T) {
	body := `{"days":[{"places":[{"placeName":"Sigiriya"},{}]}]}`
	it := itinerary.Normalize(decode(t, body))

	require.Len(t, it.Days, 1)
	assert.Equal(t, 1, it.Days[0].Number)
	require.Len(t, it.Days[0].Visits, 2)

	v := it.Days[0].Visits[0]
	assert.Equal(t, "Sigiriya", v.Name)
	assert.Equal(t, 0.0, v.Price)
	assert.Equal(t, 2.0, v.DurationHours)
	assert.Equal(t, "N/A", v.Contact)
	assert.Equal(t, itinerary.DefaultCoordinates, v.Coordinates)
	assert.Equal(t, itinerary.DefaultCategory, v.Category)
	assert.Equal(t, itinerary.DefaultRegion, v.Region)
	assert.Nil(t, v.DistanceFromPreviousKm)

	blank := it.Days[0].Visits[1]
	assert.Equal(t, itinerary.DefaultName, blank.Name)
	assert.Equal(t, 2, blank.Order)
}

func TestNormalize_MalformedFieldsDegrade(t *testing.T) {
	body := `{"daily_plans":[
		null,
		"not a day",
		{"day":"two","places":[
			42,
			{"name":{"nested":true},"latitude":"north","longitude":500,
			 "ticket_price":"free","estimated_time_to_visit":-1,
			 "start_time":"noon","end_time":[25,0],"contact_no":false}
		]},
		{"day":3,"places":"none"}
	]}`

	var it itinerary.Itinerary
	require.NotPanics(t, func() { it = itinerary.Normalize(decode(t, body)) })

	require.Len(t, it.Days, 2)
	assert.Equal(t, 3, it.Days[0].Number, "unparsable day number falls back to position")
	require.Len(t, it.Days[0].Visits, 1)

	v := it.Days[0].Visits[0]
	assert.Equal(t, itinerary.DefaultName, v.Name)
	assert.Equal(t, itinerary.DefaultCoordinates, v.Coordinates)
	assert.Equal(t, 0.0, v.Price)
	assert.Equal(t, 2.0, v.DurationHours)
	assert.Equal(t, itinerary.TimeWindow{}, v.Window)
	assert.Equal(t, "N/A", v.Contact)

	assert.Equal(t, 3, it.Days[1].Number)
	assert.Empty(t, it.Days[1].Visits)
}

func TestNormalize_NonFiniteNumbersUseDefaults(t *testing.T) {
	body := `{"totalDays":"1e300","days":[{"dayNumber":"NaN","places":[
		{"placeName":"A","totalEntryCost":"Infinity","latitude":"NaN","longitude":80},
		{"placeName":"B","visitOrder":"1e300","distanceFromPreviousKm":"inf",
		 "estimatedVisitDurationHours":"NaN","travelTimeFromPreviousHours":"-Inf"},
		{"placeName":"C","totalEntryCost":1e300,"visitOrder":-4}
	]}]}`

	it := itinerary.Normalize(decode(t, body))
	assert.Equal(t, 1, it.TotalDays)
	require.Len(t, it.Days, 1)
	assert.Equal(t, 1, it.Days[0].Number)

	visits := it.Days[0].Visits
	require.Len(t, visits, 3)
	assert.Equal(t, 0.0, visits[0].Price)
	assert.Equal(t, itinerary.DefaultCoordinates, visits[0].Coordinates)
	assert.Equal(t, 2, visits[1].Order)
	assert.Nil(t, visits[1].DistanceFromPreviousKm)
	assert.Nil(t, visits[1].TravelHoursFromPrevious)
	assert.Equal(t, itinerary.DefaultDurationHours, visits[1].DurationHours)
	assert.Equal(t, 0.0, visits[2].Price)
	assert.Equal(t, 3, visits[2].Order)

	sum := itinerary.Summarize(it)
	assert.Equal(t, 0.0, sum.TotalBudget)

	_, err := json.Marshal(it)
	require.NoError(t, err)
	_, err = json.Marshal(sum)
	require.NoError(t, err)
	_, err = json.Marshal(itinerary.NewDocument(it))
	require.NoError(t, err)
}

func TestNormalize_UnknownShapeIsEmpty(t *testing.T) {
	it := itinerary.Normalize(decode(t, `{"message":"generated"}`))
	assert.Empty(t, it.Days)
	assert.Equal(t, 0, it.TotalDays)

	it = itinerary.Normalize(itinerary.RawResponse{})
	assert.Empty(t, it.Days)
}

func TestNormalize_BareDayList(t *testing.T) {
	body := `[{"day":1,"places":[{"Place":"Ella Rock","ticket_price":250}]}]`
	it := itinerary.Normalize(decode(t, body))

	require.Len(t, it.Days, 1)
	require.Len(t, it.Days[0].Visits, 1)
	assert.Equal(t, "Ella Rock", it.Days[0].Visits[0].Name)
	assert.Equal(t, 250.0, it.Days[0].Visits[0].Price)
	assert.Equal(t, 1, it.TotalDays)
}

func TestNormalize_ReportedDistances(t *testing.T) {
	body := `{"days":[{"dayNumber":1,"places":[
		{"placeName":"A","distanceFromPreviousKm":12.5,"travelTimeFromPreviousHours":0.3},
		{"placeName":"B","distanceFromPreviousKm":"7.5"}
	]}]}`
	it := itinerary.Normalize(decode(t, body))

	visits := it.Days[0].Visits
	require.NotNil(t, visits[0].DistanceFromPreviousKm)
	assert.Equal(t, 12.5, *visits[0].DistanceFromPreviousKm)
	require.NotNil(t, visits[0].TravelHoursFromPrevious)
	assert.Equal(t, 0.3, *visits[0].TravelHoursFromPrevious)
	require.NotNil(t, visits[1].DistanceFromPreviousKm)
	assert.Equal(t, 7.5, *visits[1].DistanceFromPreviousKm)
	assert.Nil(t, visits[1].TravelHoursFromPrevious)
}
