package backtest

import (
	"sort"
	"sync"
)

// Registry maps strategy names to transforms so the HTTP and CLI surfaces
// can reference strategies by name. Callers embedding the engine can also
// pass an arbitrary Transform directly.
type Registry struct {
	mu         sync.RWMutex
	transforms map[string]Transform
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

// Register adds a named transform to the registry.
func (r *Registry) Register(name string, t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = t
}

// Get retrieves a transform by name.
func (r *Registry) Get(name string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[name]
	return t, ok
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a registry with the built-in strategies.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register("buy_and_hold", BuyAndHold)
	r.Register("half_exposure", Exposure(0.5))
	r.Register("capped", Capped(0.05))
	return r
}

// BuyAndHold leaves the return sequence unchanged.
func BuyAndHold(returns []float64) []float64 {
	out := make([]float64, len(returns))
	copy(out, returns)
	return out
}

// Exposure scales every return by a fixed fraction, simulating partial
// allocation with the remainder held in cash.
func Exposure(fraction float64) Transform {
	return func(returns []float64) []float64 {
		out := make([]float64, len(returns))
		for i, r := range returns {
			out[i] = r * fraction
		}
		return out
	}
}

// Capped clamps every return into [-limit, limit].
func Capped(limit float64) Transform {
	return func(returns []float64) []float64 {
		out := make([]float64, len(returns))
		for i, r := range returns {
			switch {
			case r > limit:
				out[i] = limit
			case r < -limit:
				out[i] = -limit
			default:
				out[i] = r
			}
		}
		return out
	}
}
