package extract

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the extraction targets known to the service. Targets
// are registered once during startup; lookups afterwards are read-only,
// so a running extraction never sees the target set change under it.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

// NewRegistry creates an empty target registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Register adds a target. Re-registering a key is a programming error.
func (r *Registry) Register(t Target) error {
	if t.Key == "" {
		return fmt.Errorf("target key must not be empty")
	}
	if t.FunctionName == "" {
		return fmt.Errorf("target %q has no function name", t.Key)
	}
	if t.Validate == nil || t.Normalize == nil {
		return fmt.Errorf("target %q must define Validate and Normalize", t.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.targets[t.Key]; exists {
		return fmt.Errorf("target %q already registered", t.Key)
	}
	r.targets[t.Key] = t
	return nil
}

// Lookup returns the target for key, or ErrUnknownTarget.
func (r *Registry) Lookup(key string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[key]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	return t, nil
}

// Keys returns the registered target keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.targets))
	for k := range r.targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
