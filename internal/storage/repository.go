package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/travelguider/internal/itinerary"
)

// ErrNotFound is returned when no saved itinerary matches.
var ErrNotFound = errors.New("saved itinerary not found")

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SavedItinerary is an itinerary a traveler chose to keep.
type SavedItinerary struct {
	ID        uuid.UUID             `json:"id"`
	Owner     string                `json:"owner"`
	Title     string                `json:"title"`
	Request   itinerary.TripRequest `json:"request"`
	Itinerary itinerary.Itinerary   `json:"itinerary"`
	Summary   itinerary.Summary     `json:"summary"`
	CreatedAt time.Time             `json:"created_at"`
}

// Repository stores saved itineraries in PostgreSQL.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const selectColumns = `SELECT id, owner, title, request, itinerary, summary, created_at FROM saved_itineraries`

// Save inserts s, assigning an ID when it has none, and returns the stored record.
func (r *Repository) Save(ctx context.Context, s SavedItinerary) (*SavedItinerary, error) {
	s.Owner = strings.TrimSpace(s.Owner)
	if s.Owner == "" {
		return nil, errors.New("saving itinerary: owner is required")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Title == "" {
		s.Title = s.Itinerary.Title
	}

	reqJSON, err := json.Marshal(s.Request)
	if err != nil {
		return nil, fmt.Errorf("marshaling trip request: %w", err)
	}
	itJSON, err := json.Marshal(s.Itinerary)
	if err != nil {
		return nil, fmt.Errorf("marshaling itinerary: %w", err)
	}
	sumJSON, err := json.Marshal(s.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	const q = `
		INSERT INTO saved_itineraries (id, owner, title, request, itinerary, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.q.QueryRow(ctx, q, s.ID, s.Owner, s.Title, reqJSON, itJSON, sumJSON).Scan(&s.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting itinerary %s for %s: %w", s.ID, s.Owner, err)
	}
	return &s, nil
}

// Get returns the saved itinerary with the given ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*SavedItinerary, error) {
	s, err := scanSaved(r.q.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying itinerary %s: %w", id, err)
	}
	return s, nil
}

// ListByOwner returns the owner's itineraries, newest first.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]*SavedItinerary, error) {
	rows, err := r.q.Query(ctx, selectColumns+` WHERE owner = $1 ORDER BY created_at DESC`, strings.TrimSpace(owner))
	if err != nil {
		return nil, fmt.Errorf("querying itineraries for %s: %w", owner, err)
	}
	return collect(rows)
}

// ListContainingPlace returns the owner's itineraries that visit the named
// place. Uses the JSONB @> containment operator.
func (r *Repository) ListContainingPlace(ctx context.Context, owner, place string) ([]*SavedItinerary, error) {
	filter, err := json.Marshal(map[string]any{
		"days": []any{map[string]any{"places": []any{map[string]any{"name": place}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling JSONB filter: %w", err)
	}

	rows, err := r.q.Query(ctx,
		selectColumns+` WHERE owner = $1 AND itinerary @> $2::jsonb ORDER BY created_at DESC`,
		strings.TrimSpace(owner), string(filter))
	if err != nil {
		return nil, fmt.Errorf("querying itineraries visiting %s: %w", place, err)
	}
	return collect(rows)
}

// Delete removes the saved itinerary with the given ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM saved_itineraries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting itinerary %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]*SavedItinerary, error) {
	defer rows.Close()

	results := []*SavedItinerary{}
	for rows.Next() {
		s, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating itinerary rows: %w", err)
	}
	return results, nil
}

func scanSaved(row pgx.Row) (*SavedItinerary, error) {
	var s SavedItinerary
	var reqJSON, itJSON, sumJSON []byte

	if err := row.Scan(&s.ID, &s.Owner, &s.Title, &reqJSON, &itJSON, &sumJSON, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning itinerary row: %w", err)
	}

	if err := json.Unmarshal(reqJSON, &s.Request); err != nil {
		return nil, fmt.Errorf("unmarshaling request of itinerary %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(itJSON, &s.Itinerary); err != nil {
		return nil, fmt.Errorf("unmarshaling itinerary %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(sumJSON, &s.Summary); err != nil {
		return nil, fmt.Errorf("unmarshaling summary of itinerary %s: %w", s.ID, err)
	}
	return &s, nil
}
