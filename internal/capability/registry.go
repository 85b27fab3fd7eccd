package capability

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Provider is the interface every capability extension implements.
type Provider interface {
	Definition() Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *Context) (*Result, error)
}

// Registry manages named capability registration and dispatch.
//
// Registration order is preserved: providers are initialized and listed in
// the order they were registered, so a later extension may rely on an
// earlier one being available.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a capability provider under its declared ID.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("capability ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[def.ID]; exists {
		return fmt.Errorf("capability already registered: %s", def.ID)
	}

	r.providers[def.ID] = provider
	r.order = append(r.order, def.ID)
	return nil
}

// Get retrieves a provider by ID.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// List returns all registered capability definitions in registration order.
func (r *Registry) List() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]Service, 0, len(r.order))
	for _, id := range r.order {
		services = append(services, r.providers[id].Definition())
	}
	return services
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute dispatches a "capability.tool" invocation to its provider.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *Context) (*Result, error) {
	parts := strings.SplitN(toolID, ".", 2)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid tool ID format: %s", toolID)
	}

	provider, ok := r.Get(parts[0])
	if !ok {
		return nil, fmt.Errorf("capability not found: %s", parts[0])
	}

	return provider.Execute(ctx, toolID, params, appCtx)
}
