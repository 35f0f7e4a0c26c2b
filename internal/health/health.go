// Package health aggregates per-subsystem health probes for the /health
// endpoint.
package health

import (
	"context"
	"sync"
)

// Status is the outcome of probing one subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker probes a single subsystem.
type Checker func(ctx context.Context) Status

type registration struct {
	name string
	fn   Checker
}

// Registry runs registered checkers in registration order.
type Registry struct {
	mu     sync.RWMutex
	probes []registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a checker under name. Checkers run in the order they were
// registered.
func (r *Registry) Register(name string, fn Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes = append(r.probes, registration{name: name, fn: fn})
}

// CheckAll probes every subsystem. The aggregate is healthy only when all
// individual probes are.
func (r *Registry) CheckAll(ctx context.Context) (bool, []Status) {
	r.mu.RLock()
	probes := append([]registration(nil), r.probes...)
	r.mu.RUnlock()

	allHealthy := true
	statuses := make([]Status, 0, len(probes))
	for _, p := range probes {
		st := p.fn(ctx)
		if !st.Healthy {
			allHealthy = false
		}
		statuses = append(statuses, st)
	}
	return allHealthy, statuses
}
