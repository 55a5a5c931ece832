package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/pixil98/go-errors"
)

// ActivitySnapshot is the persisted form of the activity cache.
type ActivitySnapshot struct {
	// Singletons is keyed by kind.
	Singletons map[string]ActivityEntry `json:"singletons,omitempty"`
	// PerLocation is keyed by kind, then location id.
	PerLocation map[string]map[string]ActivityEntry `json:"per_location,omitempty"`
	Custom      []ActivityEntry                     `json:"custom,omitempty"`
}

// ActivityEntry is one persisted activity instance.
type ActivityEntry struct {
	// Kind and ID are only written for custom instances.
	Kind    string          `json:"kind,omitempty"`
	ID      string          `json:"id,omitempty"`
	Engaged []int64         `json:"engaged,omitempty"`
	State   json.RawMessage `json:"state,omitempty"`
}

func (s *ActivitySnapshot) Validate() error {
	el := errors.NewErrorList()
	for i, e := range s.Custom {
		if e.Kind == "" {
			el.Add(fmt.Errorf("custom entry %d: kind must be set", i))
		}
	}
	return el.Err()
}

// LoadReport collects the entries a restore had to skip.
type LoadReport struct {
	rejected []error
}

func (r *LoadReport) reject(err error) {
	slog.Warn("skipping snapshot entry", "error", err)
	r.rejected = append(r.rejected, err)
}

// Clean reports whether nothing was skipped.
func (r *LoadReport) Clean() bool { return len(r.rejected) == 0 }

// Rejected returns the reasons entries were skipped.
func (r *LoadReport) Rejected() []error { return slices.Clone(r.rejected) }

func (r *LoadReport) Err() error {
	el := errors.NewErrorList()
	for _, err := range r.rejected {
		el.Add(err)
	}
	return el.Err()
}

// Snapshot captures every instance that has engaged players or state of its own.
func (c *ActivityCache) Snapshot() (*ActivitySnapshot, error) {
	snap := &ActivitySnapshot{
		Singletons:  map[string]ActivityEntry{},
		PerLocation: map[string]map[string]ActivityEntry{},
	}

	for kind, a := range c.singletons {
		e, keep, err := entryFor(a)
		if err != nil {
			return nil, err
		}
		if keep {
			snap.Singletons[kind] = e
		}
	}

	for key, a := range c.perLocation {
		e, keep, err := entryFor(a)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		if snap.PerLocation[key.kind] == nil {
			snap.PerLocation[key.kind] = map[string]ActivityEntry{}
		}
		snap.PerLocation[key.kind][strconv.FormatInt(key.location, 10)] = e
	}

	for _, a := range c.Tracked() {
		e, _, err := entryFor(a)
		if err != nil {
			return nil, err
		}
		e.Kind = a.Kind()
		e.ID = a.Base().id
		snap.Custom = append(snap.Custom, e)
	}

	return snap, nil
}

func entryFor(a Activity) (ActivityEntry, bool, error) {
	var e ActivityEntry
	for _, p := range a.Base().engaged {
		e.Engaged = append(e.Engaged, p.id)
	}
	slices.Sort(e.Engaged)

	if st, ok := a.(Stateful); ok {
		raw, err := st.MarshalState()
		if err != nil {
			return ActivityEntry{}, false, fmt.Errorf("saving state of activity %q: %w", a.Kind(), err)
		}
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			e.State = raw
		}
	}

	return e, len(e.Engaged) > 0 || e.State != nil, nil
}

// Restore rebuilds the instances in snap and engages their players, who must
// already be registered with the session and not yet engaged anywhere.
// Entries that cannot be restored are skipped and recorded in the report.
// The returned activities are the ones restored, in restore order.
func (c *ActivityCache) Restore(snap *ActivitySnapshot, report *LoadReport) []Activity {
	var restored []Activity

	for _, kind := range sortedKeys(snap.Singletons) {
		e := snap.Singletons[kind]
		a, err := c.restoreShared(kind, Singleton, func() (Activity, error) { return c.Singleton(kind) }, e)
		if err != nil {
			report.reject(fmt.Errorf("singleton %q: %w", kind, err))
			continue
		}
		restored = append(restored, a)
	}

	for _, kind := range sortedKeys(snap.PerLocation) {
		byLoc := snap.PerLocation[kind]
		for _, locKey := range sortedKeys(byLoc) {
			e := byLoc[locKey]
			a, err := c.restoreShared(kind, PerLocation, func() (Activity, error) {
				id, err := strconv.ParseInt(locKey, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("bad location id: %w", err)
				}
				loc, ok := c.session.catalog.Location(id)
				if !ok {
					return nil, fmt.Errorf("location %d no longer exists", id)
				}
				return c.ForLocation(kind, loc)
			}, e)
			if err != nil {
				report.reject(fmt.Errorf("per-location %q at %s: %w", kind, locKey, err))
				continue
			}
			restored = append(restored, a)
		}
	}

	for i, e := range snap.Custom {
		a, err := c.restoreCustom(e)
		if err != nil {
			report.reject(fmt.Errorf("custom %d (%q): %w", i, e.Kind, err))
			continue
		}
		restored = append(restored, a)
	}

	return restored
}

func (c *ActivityCache) restoreShared(kind string, lc Lifecycle, get func() (Activity, error), e ActivityEntry) (Activity, error) {
	if _, err := c.descriptorFor(kind, lc); err != nil {
		return nil, err
	}
	players, err := c.resolvePlayers(e.Engaged)
	if err != nil {
		return nil, err
	}
	a, err := get()
	if err != nil {
		return nil, err
	}
	if err := restoreState(a, e.State, false); err != nil {
		return nil, err
	}
	for _, p := range players {
		c.session.attach(p, a)
	}
	return a, nil
}

func (c *ActivityCache) restoreCustom(e ActivityEntry) (Activity, error) {
	desc, err := c.descriptorFor(e.Kind, Custom)
	if err != nil {
		return nil, err
	}
	if len(e.Engaged) == 0 {
		return nil, fmt.Errorf("no engaged players")
	}
	players, err := c.resolvePlayers(e.Engaged)
	if err != nil {
		return nil, err
	}

	a := desc.New(nil)
	if a == nil || a.Kind() != e.Kind {
		return nil, fmt.Errorf("factory for %q: %w", e.Kind, ErrLifecycleMismatch)
	}
	a.Base().id = e.ID
	if err := c.EnsureInitialized(a); err != nil {
		return nil, err
	}
	if err := restoreState(a, e.State, true); err != nil {
		return nil, err
	}
	if err := c.admitRestored(a, players); err != nil {
		return nil, err
	}
	return a, nil
}

// admitRestored engages players in a restored custom activity. The restored
// state must admit every one of them; otherwise nobody stays engaged.
func (c *ActivityCache) admitRestored(a Activity, players []*Player) error {
	gate, _ := a.(Gate)
	for i, p := range players {
		if gate != nil {
			if err := gate.Admit(p); err != nil {
				for _, q := range players[:i] {
					c.session.detach(q)
				}
				return fmt.Errorf("player %d does not match the saved state: %w", p.id, err)
			}
		}
		c.session.attach(p, a)
	}
	return nil
}

// restoreState hands raw to a. Custom activities cannot exist without their
// state, so required rejects a stateful entry that has none.
func restoreState(a Activity, raw json.RawMessage, required bool) error {
	st, ok := a.(Stateful)
	if !ok {
		if len(raw) > 0 {
			return fmt.Errorf("activity %q carries state but does not accept any", a.Kind())
		}
		return nil
	}
	if len(raw) == 0 {
		if required {
			return fmt.Errorf("activity %q has no saved state", a.Kind())
		}
		return nil
	}
	if err := st.UnmarshalState(raw); err != nil {
		return fmt.Errorf("restoring state: %w", err)
	}
	return nil
}

func (c *ActivityCache) resolvePlayers(ids []int64) ([]*Player, error) {
	players := make([]*Player, 0, len(ids))
	for _, id := range ids {
		p, ok := c.session.players[id]
		if !ok {
			return nil, fmt.Errorf("player %d: %w", id, ErrPlayerNotFound)
		}
		if p.activity != nil {
			return nil, fmt.Errorf("player %d is already engaged in %q", id, p.activity.Kind())
		}
		players = append(players, p)
	}
	return players, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
