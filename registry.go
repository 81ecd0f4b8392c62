package limber

import "sync"

// Registry tracks live clients so a caller can stop them all at shutdown.
// It replaces process-exit hooks with an explicit, caller-invoked cleanup:
// clients opt in via WithRegistry, nothing is registered implicitly.
type Registry struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

func (r *Registry) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

// Remove drops a client from the registry without stopping it.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// CloseAll stops every registered client and empties the registry. Stopping
// an already stopped client is a no-op, so CloseAll is safe to call more
// than once.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[*Client]struct{})
	r.mu.Unlock()

	for _, c := range clients {
		c.Stop()
	}
}

// DefaultRegistry is the registry used by the package-level CloseAll.
var DefaultRegistry = NewRegistry()

// CloseAll stops every client registered on the default registry. Call it
// from shutdown paths for clients constructed with
// WithRegistry(DefaultRegistry).
func CloseAll() {
	DefaultRegistry.CloseAll()
}
