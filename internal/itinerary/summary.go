package itinerary

import "math"

const earthRadiusKm = 6371.0

// Summarize totals prices, places and distance over every day of it.
// A visit's reported distance from the previous stop is used when present;
// otherwise the great-circle distance to the previous visit of the same day is.
func Summarize(it Itinerary) Summary {
	s := Summary{TotalDays: len(it.Days)}
	for _, day := range it.Days {
		for i, v := range day.Visits {
			s.TotalPlaces++
			s.TotalBudget += v.Price

			switch {
			case v.DistanceFromPreviousKm != nil:
				s.TotalDistanceKm += *v.DistanceFromPreviousKm
			case i > 0:
				s.TotalDistanceKm += Haversine(day.Visits[i-1].Coordinates, v.Coordinates)
			}
		}
	}
	return s
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Coordinates) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
