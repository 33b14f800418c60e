package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/neexbeast/travelguider/internal/backend"
	"github.com/neexbeast/travelguider/internal/itinerary"
)

// ConnectivityMessage is shown when the backend could not be reached.
const ConnectivityMessage = "Unable to reach the server. Please check your connection and try again."

// ErrSubmissionInFlight is returned by Submit while an earlier submission is outstanding.
var ErrSubmissionInFlight = errors.New("an itinerary request is already in progress")

// ErrSubmissionDiscarded is returned by Submit when the planner was closed
// before the backend answered.
var ErrSubmissionDiscarded = errors.New("itinerary request was closed before it completed")

// State is the submission state of a Planner.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateDisplaying:
		return "displaying"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Submitter sends a trip request to the generation backend.
type Submitter interface {
	GenerateItinerary(ctx context.Context, req itinerary.TripRequest) (itinerary.RawResponse, error)
}

// View is the generated itinerary held while it is on screen.
type View struct {
	Request   itinerary.TripRequest `json:"request"`
	Itinerary itinerary.Itinerary   `json:"itinerary"`
	Summary   itinerary.Summary     `json:"summary"`
}

// Status is a snapshot of a Planner for renderers.
type Status struct {
	State     State  `json:"state"`
	Message   string `json:"message,omitempty"`
	Screen    Screen `json:"screen"`
	CanSubmit bool   `json:"can_submit"`
	View      *View  `json:"view,omitempty"`
}

// Planner drives one traveler's trip form through
// idle -> submitting -> displaying | idle-with-message.
type Planner struct {
	submitter Submitter
	log       *slog.Logger
	nav       *Navigator

	mu      sync.Mutex
	state   State
	message string
	view    *View
	// discard is set by Close while a submission is outstanding.
	discard bool
}

// New creates an idle Planner showing the planner screen.
func New(submitter Submitter, log *slog.Logger) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		submitter: submitter,
		log:       log,
		nav:       NewNavigator(ScreenPlanner),
	}
}

// Submit validates form, sends it and normalizes the reply. Validation errors
// are returned before any request is made. Every failure leaves the planner
// idle with a user-visible message.
func (p *Planner) Submit(ctx context.Context, form itinerary.TripForm) (*View, error) {
	p.mu.Lock()
	if p.state == StateSubmitting {
		p.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	req, err := itinerary.BuildRequest(form)
	if err != nil {
		p.state = StateIdle
		p.message = UserMessage(err)
		p.view = nil
		p.mu.Unlock()
		return nil, err
	}
	p.state = StateSubmitting
	p.message = ""
	p.discard = false
	p.mu.Unlock()

	raw, err := p.submitter.GenerateItinerary(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discard {
		p.discard = false
		p.state = StateIdle
		p.message = ""
		p.view = nil
		p.log.Info("dropping itinerary closed while in flight", "location", req.StartingLocation)
		return nil, ErrSubmissionDiscarded
	}
	if err != nil {
		p.state = StateIdle
		p.message = UserMessage(err)
		p.view = nil
		p.log.Warn("itinerary submission failed", "location", req.StartingLocation, "err", err)
		return nil, err
	}

	it := itinerary.Normalize(raw)
	view := &View{Request: req, Itinerary: it, Summary: itinerary.Summarize(it)}
	p.view = view
	p.state = StateDisplaying
	if p.nav.Current() != ScreenPlanner && p.nav.Current() != ScreenItinerary {
		_, _ = p.nav.Dispatch(EventOpenPlanner)
	}
	if _, err := p.nav.Dispatch(EventItineraryReady); err != nil {
		p.log.Error("showing itinerary", "err", err)
	}
	p.log.Info("itinerary ready",
		"shape", raw.Shape.String(), "days", len(it.Days), "places", view.Summary.TotalPlaces)
	return view, nil
}

// View returns the itinerary on screen, or nil.
func (p *Planner) View() *View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Close discards the displayed itinerary and returns to the form. A submission
// still in flight is dropped when it completes.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateDisplaying:
		p.state = StateIdle
	case StateSubmitting:
		p.discard = true
	}
	p.view = nil
	p.message = ""
	if p.nav.Current() == ScreenItinerary {
		_, _ = p.nav.Dispatch(EventClose)
	}
}

// Navigate moves the traveler to another screen.
func (p *Planner) Navigate(ev Event) (Screen, error) {
	return p.nav.Dispatch(ev)
}

// Status reports the current state.
func (p *Planner) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:     p.state,
		Message:   p.message,
		Screen:    p.nav.Current(),
		CanSubmit: p.state != StateSubmitting,
		View:      p.view,
	}
}

// UserMessage turns a submission error into the text shown to the traveler.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *itinerary.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var serr *backend.ServerError
	if errors.As(err, &serr) {
		return serr.Message
	}
	if errors.Is(err, ErrSubmissionInFlight) {
		return "Please wait for the current request to finish."
	}
	if errors.Is(err, ErrSubmissionDiscarded) {
		return "The itinerary request was cancelled."
	}
	var cerr *backend.ConnectivityError
	if errors.As(err, &cerr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ConnectivityMessage
	}
	return err.Error()
}
