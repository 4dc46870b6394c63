package validator

// Registry holds checkers keyed by rule key. Registration order is kept so
// audit output is deterministic.
type Registry struct {
	keys     []string
	checkers map[string]Checker
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds a checker to the registry. Re-registering a key replaces
// the checker but keeps its original position.
func (r *Registry) Register(c Checker) {
	if _, exists := r.checkers[c.Key()]; !exists {
		r.keys = append(r.keys, c.Key())
	}
	r.checkers[c.Key()] = c
}

// Get returns the checker for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Checker {
	return r.checkers[key]
}

// All returns the registered checkers in registration order.
func (r *Registry) All() []Checker {
	out := make([]Checker, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.checkers[key])
	}
	return out
}

// DefaultRegistry returns a registry with the built-in checkers installed.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range BuiltinCheckers() {
		r.Register(c)
	}
	return r
}
