package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type locationKey struct {
	kind     string
	location int64
}

// ActivityCache owns every shared activity instance and tracks the custom
// instances that currently have players in them.
type ActivityCache struct {
	session  *Session
	registry *Registry

	singletons  map[string]Activity
	perLocation map[locationKey]Activity
	custom      map[Activity]struct{}
}

func newActivityCache(s *Session, r *Registry) *ActivityCache {
	return &ActivityCache{
		session:     s,
		registry:    r,
		singletons:  map[string]Activity{},
		perLocation: map[locationKey]Activity{},
		custom:      map[Activity]struct{}{},
	}
}

// EnsureInitialized binds a to the session once. Binding an activity that
// already belongs to another session fails with ErrSessionMismatch.
func (c *ActivityCache) EnsureInitialized(a Activity) error {
	b := a.Base()
	switch b.session {
	case c.session:
		return nil
	case nil:
	default:
		return fmt.Errorf("activity %q: %w", a.Kind(), ErrSessionMismatch)
	}

	desc, err := c.descriptor(a.Kind())
	if err != nil {
		return err
	}
	if desc.Lifecycle == Custom && b.id == "" {
		b.id = uuid.NewString()
	}

	b.session = c.session
	if init, ok := a.(Initializer); ok {
		if err := init.Init(); err != nil {
			b.session = nil
			return fmt.Errorf("initializing activity %q: %w", a.Kind(), err)
		}
	}
	return nil
}

// Singleton returns the one instance of kind, building it on first use.
func (c *ActivityCache) Singleton(kind string) (Activity, error) {
	if a, ok := c.singletons[kind]; ok {
		return a, nil
	}
	desc, err := c.descriptorFor(kind, Singleton)
	if err != nil {
		return nil, err
	}
	a, err := c.build(desc, nil)
	if err != nil {
		return nil, err
	}
	c.singletons[kind] = a
	return a, nil
}

// ForLocation returns the instance of kind for loc, building it on first use.
func (c *ActivityCache) ForLocation(kind string, loc *Location) (Activity, error) {
	if loc == nil {
		return nil, fmt.Errorf("activity %q: location is required", kind)
	}
	key := locationKey{kind: kind, location: loc.ID}
	if a, ok := c.perLocation[key]; ok {
		return a, nil
	}
	desc, err := c.descriptorFor(kind, PerLocation)
	if err != nil {
		return nil, err
	}
	a, err := c.build(desc, loc)
	if err != nil {
		return nil, err
	}
	c.perLocation[key] = a
	return a, nil
}

// Tracked returns the custom instances with at least one engaged player,
// ordered by instance id.
func (c *ActivityCache) Tracked() []Activity {
	out := make([]Activity, 0, len(c.custom))
	for a := range c.custom {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Activity) int {
		return strings.Compare(a.Base().id, b.Base().id)
	})
	return out
}

// track keeps the custom set in line with a's engagement after a change.
func (c *ActivityCache) track(a Activity) {
	desc, ok := c.registry.Lookup(a.Kind())
	if !ok || desc.Lifecycle != Custom {
		return
	}
	if len(a.Base().engaged) > 0 {
		c.custom[a] = struct{}{}
	} else {
		delete(c.custom, a)
	}
}

func (c *ActivityCache) build(desc Descriptor, loc *Location) (Activity, error) {
	a := desc.New(loc)
	if a == nil {
		return nil, fmt.Errorf("activity %q: factory returned nil", desc.Kind)
	}
	if a.Kind() != desc.Kind {
		return nil, fmt.Errorf("activity %q: factory built %q: %w", desc.Kind, a.Kind(), ErrLifecycleMismatch)
	}
	if err := c.EnsureInitialized(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *ActivityCache) descriptor(kind string) (Descriptor, error) {
	desc, ok := c.registry.Lookup(kind)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownActivity, kind)
	}
	return desc, nil
}

func (c *ActivityCache) descriptorFor(kind string, lc Lifecycle) (Descriptor, error) {
	desc, err := c.descriptor(kind)
	if err != nil {
		return Descriptor{}, err
	}
	if desc.Lifecycle != lc {
		return Descriptor{}, fmt.Errorf("activity %q is %s, not %s: %w", kind, desc.Lifecycle, lc, ErrLifecycleMismatch)
	}
	return desc, nil
}
