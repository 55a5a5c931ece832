package game

import "fmt"

// Behavior is what happens when a player triggers an action.
type Behavior interface {
	Perform(p *Player)
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(p *Player)

func (f BehaviorFunc) Perform(p *Player) { f(p) }

// Action is one player-triggerable operation of a single activity.
type Action struct {
	key      string
	group    string
	name     string
	enabled  bool
	owner    Activity
	behavior Behavior
}

// NewAction builds an enabled action. It belongs to no activity until the
// session adds it to one.
func NewAction(key, group, name string, b Behavior) *Action {
	return &Action{
		key:      key,
		group:    group,
		name:     name,
		enabled:  true,
		behavior: b,
	}
}

// Disabled marks a not yet added action as disabled and returns it.
func (a *Action) Disabled() *Action {
	a.enabled = false
	return a
}

func (a *Action) Key() string        { return a.key }
func (a *Action) Group() string      { return a.group }
func (a *Action) Name() string       { return a.name }
func (a *Action) Enabled() bool      { return a.enabled }
func (a *Action) Activity() Activity { return a.owner }

// Perform runs the action for p if p is currently engaged in the activity
// owning it and the action is enabled and still part of that activity.
// Otherwise nothing happens and ErrNotPermitted is returned.
func Perform(p *Player, a *Action) error {
	if a == nil || p == nil {
		return ErrNotPermitted
	}
	if p.activity == nil || a.owner == nil || p.activity != a.owner {
		return fmt.Errorf("%s is not engaged in the activity of %q: %w", p, a.key, ErrNotPermitted)
	}
	if !a.enabled || p.activity.Base().Action(a.key) != a {
		return fmt.Errorf("action %q is not available: %w", a.key, ErrNotPermitted)
	}
	a.behavior.Perform(p)
	return nil
}
