package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/neexbeast/travelguider/internal/planner"
	"github.com/neexbeast/travelguider/internal/storage"
)

// ItineraryRepo defines the storage operations needed by handlers.
type ItineraryRepo interface {
	Save(ctx context.Context, s storage.SavedItinerary) (*storage.SavedItinerary, error)
	Get(ctx context.Context, id uuid.UUID) (*storage.SavedItinerary, error)
	ListByOwner(ctx context.Context, owner string) ([]*storage.SavedItinerary, error)
	ListContainingPlace(ctx context.Context, owner, place string) ([]*storage.SavedItinerary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlannerPool hands out the per-traveler planners.
type PlannerPool interface {
	For(clientID string) *planner.Planner
	Lookup(clientID string) (*planner.Planner, bool)
	Forget(clientID string)
}

// Backend defines the tourism backend calls that do not need a traveler session.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Categories(ctx context.Context) ([]string, error)
	Districts(ctx context.Context) ([]string, error)
}
