package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownVariant is returned when no factory is registered for a variant
var ErrUnknownVariant = errors.New("unknown game variant")

// Registry maps variant names to game factories. Build one in the
// composition root and pass it to whatever needs to create games.
type Registry struct {
	mu        sync.RWMutex
	factories map[Variant]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Variant]Factory)}
}

// Register adds or replaces the factory for variant
func (r *Registry) Register(variant Variant, factory Factory) error {
	if variant == "" {
		return fmt.Errorf("variant name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %q cannot be nil", variant)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[variant] = factory
	return nil
}

// Variants returns the registered variant names sorted alphabetically
func (r *Registry) Variants() []Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Variant, 0, len(r.factories))
	for v := range r.factories {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether variant is registered
func (r *Registry) Has(variant Variant) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[variant]
	return ok
}

// New validates config and builds a game of config.Variant
func (r *Registry) New(config *GameConfig, opts ...Option) (Game, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	r.mu.RLock()
	factory, ok := r.factories[config.Variant]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, config.Variant)
	}
	return factory(config, opts...)
}
