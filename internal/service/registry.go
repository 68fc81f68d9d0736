// Package service manages provider discovery and execution.
package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AFatNiBBa/config-fs/internal/shared/types"
)

// Provider interface for service implementations.
type Provider interface {
	Definition() types.Service
	Execute(toolID string, params map[string]interface{}, ctx *types.Context) (*types.Result, error)
}

// Registry manages service providers keyed by their definition ID.
type Registry struct {
	services sync.Map
}

// NewRegistry creates a new service registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a service provider.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	r.services.Store(def.ID, provider)
	return nil
}

// Unregister removes a service provider.
func (r *Registry) Unregister(serviceID string) {
	r.services.Delete(serviceID)
}

// Get retrieves a service by ID.
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns all registered services, optionally filtered by category.
func (r *Registry) List(category *types.Category) []types.Service {
	var services []types.Service
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	return services
}

// Execute dispatches a tool call to the provider owning its service prefix.
// Tool IDs follow the "service.tool" convention.
func (r *Registry) Execute(toolID string, params map[string]interface{}, ctx *types.Context) (*types.Result, error) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok {
		return nil, fmt.Errorf("malformed tool ID %q", toolID)
	}
	provider, found := r.Get(serviceID)
	if !found {
		return nil, fmt.Errorf("unknown service %q", serviceID)
	}
	return provider.Execute(toolID, params, ctx)
}
