package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Registry maps configured names to strategy implementations.
type Registry struct {
	strategies map[string]Strategy
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		mu:         sync.RWMutex{},
	}
}

// DefaultRegistry returns a registry holding every built-in evaluator.
// The multi-timeframe aggregator is not a per-series strategy and is wired by
// the collector instead.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, s := range []Strategy{
		NewDonchian(),
		NewVolume(),
		NewSuperTrend(),
		NewIchimoku(),
		NewRSI(),
		NewTextbook(),
		NewSMC(),
		NewMACD(),
	} {
		// names are distinct, Register cannot fail here
		_ = r.Register(s)
	}

	return r
}

// Register adds a strategy under its Name.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists || name == NameMultiTimeframe {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "Register: strategy with name %s already registered", name)
	}

	r.strategies[name] = s

	return nil
}

// Get looks a strategy up by name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.strategies[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "Get: strategy with name %s not found", name)
	}

	return s, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Known reports whether name is a registered strategy or the aggregator.
func (r *Registry) Known(name string) bool {
	if name == NameMultiTimeframe {
		return true
	}

	_, err := r.Get(name)

	return err == nil
}
