package registry

import (
	"sort"

	"github.com/vk/gradegrid/internal/config"
)

// Module is the interface that all delegate modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered delegates and manifests for a single
// application instance.
type Registry struct {
	Checkers  map[string]*RegisteredChecker
	Manifests map[string]*config.CheckerManifest
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		Checkers:  make(map[string]*RegisteredChecker),
		Manifests: make(map[string]*config.CheckerManifest),
	}
}

// PopulateManifestsFromModel copies the loaded manifests from the config
// model into the registry.
func (r *Registry) PopulateManifestsFromModel(model *config.Model) {
	for key, val := range model.Manifests {
		r.Manifests[key] = val
	}
}

// Lookup returns the delegate registered under name.
func (r *Registry) Lookup(name string) (*RegisteredChecker, bool) {
	c, ok := r.Checkers[name]
	return c, ok
}

// Names lists the registered delegates in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Checkers))
	for name := range r.Checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
