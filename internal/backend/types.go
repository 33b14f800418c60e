package backend

// Place is a point of interest managed in the back office.
type Place struct {
	PlaceID              string  `json:"placeId,omitempty"`
	Name                 string  `json:"name"`
	District             string  `json:"district,omitempty"`
	Description          string  `json:"description,omitempty"`
	Region               string  `json:"region,omitempty"`
	Category             string  `json:"category,omitempty"`
	EstimatedTimeToVisit float64 `json:"estimatedTimeToVisit,omitempty"`
	Latitude             float64 `json:"latitude,omitempty"`
	Longitude            float64 `json:"longitude,omitempty"`
}

// BusSchedule is one bus route timetable entry.
type BusSchedule struct {
	ID                string `json:"id,omitempty"`
	RouteName         string `json:"routeName"`
	DepartureLocation string `json:"departureLocation"`
	ArrivalLocation   string `json:"arrivalLocation"`
	DepartureTime     string `json:"departureTime"`
	ArrivalTime       string `json:"arrivalTime"`
	Frequency         string `json:"frequency,omitempty"`
	DurationMinutes   int    `json:"durationMinutes,omitempty"`
}

// TrainSchedule is one train timetable entry.
type TrainSchedule struct {
	ScheduleID    string `json:"scheduleId,omitempty"`
	TrainName     string `json:"trainName"`
	FromStation   string `json:"fromStation"`
	ToStation     string `json:"toStation"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Duration      string `json:"duration,omitempty"`
}

// Registration is the sign-up form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Admin is a back-office account created by another admin.
type Admin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the signed-in user's profile.
type Profile struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	DOB     string `json:"dob,omitempty"`
	Address string `json:"address,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	Role    string `json:"role,omitempty"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CSVType names one of the importable datasets.
type CSVType string

const (
	CSVPlaces     CSVType = "places"
	CSVEntryFees  CSVType = "entry-fees"
	csvStatusPath         = "/api/csv/status/"
)

// Valid reports whether t is a dataset the backend accepts.
func (t CSVType) Valid() bool {
	return t == CSVPlaces || t == CSVEntryFees
}

// CSVStatus describes the stored CSV file of one dataset.
type CSVStatus struct {
	Exists bool `json:"exists"`
	Info   any  `json:"info"`
}

// Dashboard holds the admin landing-page counters.
type Dashboard struct {
	Places int `json:"places"`
	Buses  int `json:"buses"`
	Trains int `json:"trains"`
}
