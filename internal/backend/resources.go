package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Resource is a REST collection supporting list, get, create, update and delete.
type Resource[T any] struct {
	c    *Client
	path string
	name string
}

// Places is the place collection.
func (c *Client) Places() *Resource[Place] {
	return &Resource[Place]{c: c, path: "/api/places", name: "place"}
}

// Buses is the bus schedule collection.
func (c *Client) Buses() *Resource[BusSchedule] {
	return &Resource[BusSchedule]{c: c, path: "/api/bus-schedules", name: "bus schedule"}
}

// Trains is the train schedule collection.
func (c *Client) Trains() *Resource[TrainSchedule] {
	return &Resource[TrainSchedule]{c: c, path: "/api/train-schedules", name: "train schedule"}
}

func (r *Resource[T]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// List returns every item of the collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.doJSON(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, fmt.Errorf("listing %ss: %w", r.name, err)
	}
	return out, nil
}

// Get returns one item by ID.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodGet, r.item(id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", r.name, id, err)
	}
	return &out, nil
}

// Create adds v and returns the stored item.
func (r *Resource[T]) Create(ctx context.Context, v T) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPost, r.path, v, &out); err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.name, err)
	}
	return &out, nil
}

// Update replaces the item with ID id.
func (r *Resource[T]) Update(ctx context.Context, id string, v T) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPut, r.item(id), v, &out); err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", r.name, id, err)
	}
	return &out, nil
}

// Delete removes the item with ID id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.c.doJSON(ctx, http.MethodDelete, r.item(id), nil, nil); err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.name, id, err)
	}
	return nil
}

// SearchPlaces finds places matching query.
func (c *Client) SearchPlaces(ctx context.Context, query string) ([]Place, error) {
	var out []Place
	path := "/api/places/search?q=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("searching places for %q: %w", query, err)
	}
	return out, nil
}

// CreateAdmin registers a new back-office admin.
func (c *Client) CreateAdmin(ctx context.Context, a Admin) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/create", a, nil); err != nil {
		return fmt.Errorf("creating admin %s: %w", a.Email, err)
	}
	return nil
}
