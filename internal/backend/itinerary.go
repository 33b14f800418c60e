package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/neexbeast/travelguider/internal/itinerary"
)

const generatePath = "/api/itinerary/generate"

// GenerateItinerary posts req to the generation endpoint and returns the raw,
// shape-tagged response. It is never retried.
func (c *Client) GenerateItinerary(ctx context.Context, req itinerary.TripRequest) (itinerary.RawResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return itinerary.RawResponse{}, fmt.Errorf("encoding trip request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, generatePath, bytes.NewReader(b), "application/json")
	if err != nil {
		return itinerary.RawResponse{}, err
	}
	body, err := c.send(httpReq)
	if err != nil {
		return itinerary.RawResponse{}, err
	}

	raw, err := itinerary.DecodeRaw(body)
	if err != nil {
		return itinerary.RawResponse{}, &ConnectivityError{Op: "POST " + generatePath, Err: err}
	}
	c.log.Info("itinerary generated",
		"shape", raw.Shape.String(), "days", req.TotalDays, "location", req.StartingLocation)
	return raw, nil
}

// Categories lists the place categories the generator understands.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/itinerary/categories", nil, &out); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return out, nil
}

// Districts lists the districts places can be generated for.
func (c *Client) Districts(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/api/itinerary/districts", nil, &out); err != nil {
		return nil, fmt.Errorf("listing districts: %w", err)
	}
	return out, nil
}
