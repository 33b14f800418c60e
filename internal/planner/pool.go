package planner

import (
	"log/slog"
	"strings"
	"sync"
)

// SubmitterFactory builds the submitter used by one client's planner,
// typically a backend client bound to that client's session.
type SubmitterFactory func(clientID string) Submitter

// Pool holds one Planner per client ID.
type Pool struct {
	newSubmitter SubmitterFactory
	log          *slog.Logger

	mu       sync.Mutex
	planners map[string]*Planner
}

// NewPool returns an empty pool.
func NewPool(factory SubmitterFactory, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{newSubmitter: factory, log: log, planners: make(map[string]*Planner)}
}

func poolKey(clientID string) string {
	return strings.ToLower(strings.TrimSpace(clientID))
}

// For returns the planner of clientID, creating it on first use.
func (p *Pool) For(clientID string) *Planner {
	key := poolKey(clientID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if pl, ok := p.planners[key]; ok {
		return pl
	}
	pl := New(p.newSubmitter(key), p.log.With("client", key))
	p.planners[key] = pl
	return pl
}

// Lookup returns the planner of clientID if one exists.
func (p *Pool) Lookup(clientID string) (*Planner, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.planners[poolKey(clientID)]
	return pl, ok
}

// Forget drops the planner of clientID and any itinerary it displays.
func (p *Pool) Forget(clientID string) {
	key := poolKey(clientID)
	p.mu.Lock()
	pl, ok := p.planners[key]
	delete(p.planners, key)
	p.mu.Unlock()
	if ok {
		pl.Close()
	}
}

// Len returns the number of planners held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.planners)
}
