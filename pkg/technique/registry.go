package technique

import "sync"

// Registry holds all registered techniques. Registration order is
// preserved so runs are reproducible for a fixed registry state.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Technique
	ordered []Technique
}

// NewRegistry creates a new empty technique registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Technique),
	}
}

// Register adds a technique to the registry. A technique whose name is
// already present is rejected with *DuplicateError and the stored
// technique is left unchanged.
func (r *Registry) Register(t Technique) error {
	if t == nil {
		return ErrNilTechnique
	}
	name := t.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return &DuplicateError{Name: name}
	}

	r.byName[name] = t
	r.ordered = append(r.ordered, t)
	return nil
}

// IsRegistered reports whether a technique with the given name exists.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Get retrieves a technique by name.
func (r *Registry) Get(name string) (Technique, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Techniques returns a snapshot of all registered techniques in
// registration order. The returned slice is owned by the caller and is
// not invalidated by later registrations.
func (r *Registry) Techniques() []Technique {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Technique, len(r.ordered))
	copy(snapshot, r.ordered)
	return snapshot
}

// Names returns all registered technique names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.ordered))
	for i, t := range r.ordered {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of registered techniques.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// DefaultRegistry is the process-wide registry instance. Technique
// packs add themselves to it from init().
var DefaultRegistry = NewRegistry()

// Register adds a technique to the default registry.
func Register(t Technique) error {
	return DefaultRegistry.Register(t)
}

// MustRegister adds a technique to the default registry and panics on
// failure. Intended for init()-time registration where a rejected
// technique is a programming error.
func MustRegister(t Technique) {
	if err := DefaultRegistry.Register(t); err != nil {
		panic(err)
	}
}
