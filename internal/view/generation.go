package view

import "sync"

// Generation discards responses that arrive after a newer request started.
// Begin before fetching, Commit with the returned token when the data is in.
type Generation struct {
	mu      sync.Mutex
	current uint64
}

// Begin starts a new request generation
func (g *Generation) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Commit runs apply only if token is still the latest generation
func (g *Generation) Commit(token uint64, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.current {
		return false
	}
	apply()
	return true
}
