package http

import "sync"

// InFlightGuard admits one pending request per key.
type InFlightGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{pending: make(map[string]struct{})}
}

// Acquire reports false if key already has a request in flight. A successful
// Acquire must be paired with Release.
func (g *InFlightGuard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[key]; busy {
		return false
	}
	g.pending[key] = struct{}{}
	return true
}

func (g *InFlightGuard) Release(key string) {
	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()
}
