package state

import (
	"context"
	"sync"

	"github.com/rasayana/storefront/internal/persistence"
)

// Registry hands out one Manager per session owner, constructing and loading
// it on first use. It is the single shared handle consumers are given instead
// of ad-hoc global state.
type Registry struct {
	mu       sync.Mutex
	adapter  persistence.Adapter
	managers map[string]*Manager
}

func NewRegistry(adapter persistence.Adapter) *Registry {
	return &Registry{
		adapter:  adapter,
		managers: make(map[string]*Manager),
	}
}

func (r *Registry) ForOwner(ctx context.Context, ownerID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[ownerID]; ok {
		return m
	}

	// Load before publishing, so a concurrent request for the same owner
	// never observes a half-initialized manager.
	m := NewManager(ownerID, r.adapter)
	m.Load(ctx)
	r.managers[ownerID] = m
	return m
}
