package backend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Dashboard fetches the admin counters concurrently. Any failed listing fails
// the whole call.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var d Dashboard

	g.Go(func() error {
		places, err := c.Places().List(gCtx)
		if err != nil {
			return err
		}
		d.Places = len(places)
		return nil
	})

	g.Go(func() error {
		buses, err := c.Buses().List(gCtx)
		if err != nil {
			return err
		}
		d.Buses = len(buses)
		return nil
	})

	g.Go(func() error {
		trains, err := c.Trains().List(gCtx)
		if err != nil {
			return err
		}
		d.Trains = len(trains)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}
	return &d, nil
}
