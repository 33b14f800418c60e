package planner

import (
	"errors"
	"fmt"
	"sync"
)

// Screen is a navigation target of the traveler-facing site.
type Screen int

const (
	ScreenLanding Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenPlanner
	ScreenItinerary
	ScreenSaved
	ScreenProfile
	ScreenChat
	ScreenAdmin
)

var screenNames = map[Screen]string{
	ScreenLanding:   "landing",
	ScreenLogin:     "login",
	ScreenRegister:  "register",
	ScreenPlanner:   "planner",
	ScreenItinerary: "itinerary",
	ScreenSaved:     "saved",
	ScreenProfile:   "profile",
	ScreenChat:      "chat",
	ScreenAdmin:     "admin",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// MarshalText encodes the screen by name.
func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event is something that moves the traveler between screens.
type Event int

const (
	EventOpenLogin Event = iota
	EventOpenRegister
	EventAuthenticated
	EventLoggedOut
	EventOpenPlanner
	EventItineraryReady
	EventOpenSaved
	EventOpenProfile
	EventOpenChat
	EventOpenAdmin
	EventClose
)

var eventNames = map[Event]string{
	EventOpenLogin:      "open_login",
	EventOpenRegister:   "open_register",
	EventAuthenticated:  "authenticated",
	EventLoggedOut:      "logged_out",
	EventOpenPlanner:    "open_planner",
	EventItineraryReady: "itinerary_ready",
	EventOpenSaved:      "open_saved",
	EventOpenProfile:    "open_profile",
	EventOpenChat:       "open_chat",
	EventOpenAdmin:      "open_admin",
	EventClose:          "close",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent maps a wire name such as "open_planner" to its Event.
func ParseEvent(name string) (Event, error) {
	for ev, n := range eventNames {
		if n == name {
			return ev, nil
		}
	}
	return 0, fmt.Errorf("unknown navigation event %q", name)
}

// ErrInvalidTransition is returned when an event is not allowed on the current screen.
var ErrInvalidTransition = errors.New("navigation event not allowed here")

// transitions is the only place screen changes are defined. Events listed
// under anyScreen apply from every screen not overriding them.
var transitions = map[Screen]map[Event]Screen{
	ScreenLanding: {
		EventOpenLogin:    ScreenLogin,
		EventOpenRegister: ScreenRegister,
		EventOpenPlanner:  ScreenPlanner,
		EventOpenChat:     ScreenChat,
	},
	ScreenLogin: {
		EventAuthenticated: ScreenLanding,
		EventOpenRegister:  ScreenRegister,
		EventClose:         ScreenLanding,
	},
	ScreenRegister: {
		EventAuthenticated: ScreenLanding,
		EventOpenLogin:     ScreenLogin,
		EventClose:         ScreenLanding,
	},
	ScreenPlanner: {
		EventItineraryReady: ScreenItinerary,
		EventClose:          ScreenLanding,
	},
	ScreenItinerary: {
		EventItineraryReady: ScreenItinerary,
		EventClose:          ScreenPlanner,
	},
	ScreenSaved:   {EventClose: ScreenLanding},
	ScreenProfile: {EventClose: ScreenLanding},
	ScreenChat:    {EventClose: ScreenLanding},
	ScreenAdmin:   {EventClose: ScreenLanding},
}

const anyScreen Screen = -1

func init() {
	transitions[anyScreen] = map[Event]Screen{
		EventLoggedOut:   ScreenLanding,
		EventOpenPlanner: ScreenPlanner,
		EventOpenProfile: ScreenProfile,
		EventOpenSaved:   ScreenSaved,
		EventOpenAdmin:   ScreenAdmin,
	}
}

// Next returns the screen reached from s on ev.
func Next(s Screen, ev Event) (Screen, error) {
	if to, ok := transitions[s][ev]; ok {
		return to, nil
	}
	if to, ok := transitions[anyScreen][ev]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s)
}

// Navigator tracks the current screen of one traveler.
type Navigator struct {
	mu      sync.Mutex
	current Screen
}

// NewNavigator starts at screen start.
func NewNavigator(start Screen) *Navigator {
	return &Navigator{current: start}
}

// Current returns the screen being shown.
func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Dispatch applies ev and returns the new screen. An invalid event leaves the
// navigator where it was.
func (n *Navigator) Dispatch(ev Event) (Screen, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	to, err := Next(n.current, ev)
	if err != nil {
		return n.current, err
	}
	n.current = to
	return to, nil
}
