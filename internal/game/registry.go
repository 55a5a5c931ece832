package game

import (
	"fmt"
	"slices"
)

// Lifecycle is how instances of an activity kind are created and shared.
type Lifecycle int

const (
	// Singleton kinds have one instance for the whole session.
	Singleton Lifecycle = iota + 1
	// PerLocation kinds have one instance per location.
	PerLocation
	// Custom kinds have one instance per encounter, built by game logic.
	Custom
)

func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case PerLocation:
		return "per-location"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// Factory builds a fresh, unbound activity. loc is set only for PerLocation
// kinds.
type Factory func(loc *Location) Activity

// Descriptor declares an activity kind.
type Descriptor struct {
	Kind      string
	Lifecycle Lifecycle
	New       Factory
}

// Registry maps activity kinds to their descriptors.
type Registry struct {
	kinds map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{kinds: map[string]Descriptor{}}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Kind == "" {
		return fmt.Errorf("activity kind is required")
	}
	switch d.Lifecycle {
	case Singleton, PerLocation, Custom:
	default:
		return fmt.Errorf("activity %q: %w: %v", d.Kind, ErrLifecycleMismatch, d.Lifecycle)
	}
	if d.New == nil {
		return fmt.Errorf("activity %q: factory is required", d.Kind)
	}
	if _, ok := r.kinds[d.Kind]; ok {
		return fmt.Errorf("activity %q registered twice", d.Kind)
	}
	r.kinds[d.Kind] = d
	return nil
}

func (r *Registry) Lookup(kind string) (Descriptor, bool) {
	d, ok := r.kinds[kind]
	return d, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
