package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// HostingFactory creates a HostingRepository for an auth token, an optional
// API base URL and the clone protocol used to pick clone URLs.
type HostingFactory func(token, baseURL, cloneProtocol string) (domainRepos.HostingRepository, error)

// HostingRegistry manages all registered hosting platform implementations.
type HostingRegistry struct {
	factories map[string]HostingFactory
}

// NewHostingRegistry creates an empty hosting registry.
func NewHostingRegistry() *HostingRegistry {
	return &HostingRegistry{
		factories: make(map[string]HostingFactory),
	}
}

// Register adds a hosting factory under the given name (e.g. "github").
func (r *HostingRegistry) Register(name string, factory HostingFactory) {
	r.factories[name] = factory
}

// Get returns a configured hosting instance for the given name.
func (r *HostingRegistry) Get(name, token, baseURL, cloneProtocol string) (domainRepos.HostingRepository, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown hosting provider: %q", name)
	}
	return factory(token, baseURL, cloneProtocol)
}

// Names returns the sorted list of registered provider names.
func (r *HostingRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
