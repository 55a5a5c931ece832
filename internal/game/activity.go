package game

import (
	"encoding/json"
	"slices"
)

// Activity is the interaction mode a player is in. Concrete activities embed
// an ActivityBase and are registered with a Registry under their Kind.
type Activity interface {
	Kind() string
	Base() *ActivityBase
	// Begin runs after the player has been engaged.
	Begin(p *Player)
	// End runs before the player is disengaged.
	End(p *Player)
	Description(p *Player) string
}

// Initializer is implemented by activities that build their actions once
// they are bound to a session.
type Initializer interface {
	Init() error
}

// Gate is implemented by activities that restrict who may enter them.
type Gate interface {
	Admit(p *Player) error
}

// Stateful activities persist their own state in the activity snapshot.
type Stateful interface {
	MarshalState() (json.RawMessage, error)
	UnmarshalState(raw json.RawMessage) error
}

// Resumer activities continue pending work after a snapshot restore.
type Resumer interface {
	Resume()
}

// ActivityBase carries what every activity shares. Its lists are changed
// only by the Session.
type ActivityBase struct {
	session *Session
	id      string
	actions []*Action
	engaged []*Player
}

func (b *ActivityBase) Base() *ActivityBase { return b }

// Session returns the session the activity is bound to, nil before binding.
func (b *ActivityBase) Session() *Session { return b.session }

// ID identifies a custom activity instance. Shared activities have no id.
func (b *ActivityBase) ID() string { return b.id }

func (b *ActivityBase) Actions() []*Action { return slices.Clone(b.actions) }

// EnabledActions is the view players see.
func (b *ActivityBase) EnabledActions() []*Action {
	var out []*Action
	for _, a := range b.actions {
		if a.enabled {
			out = append(out, a)
		}
	}
	return out
}

func (b *ActivityBase) Action(key string) *Action {
	for _, a := range b.actions {
		if a.key == key {
			return a
		}
	}
	return nil
}

func (b *ActivityBase) Engaged() []*Player { return slices.Clone(b.engaged) }

func (b *ActivityBase) IsEngaged(p *Player) bool {
	return slices.Contains(b.engaged, p)
}

func (b *ActivityBase) engage(p *Player) {
	if !b.IsEngaged(p) {
		b.engaged = append(b.engaged, p)
	}
}

func (b *ActivityBase) disengage(p *Player) {
	if i := slices.Index(b.engaged, p); i >= 0 {
		b.engaged = slices.Delete(b.engaged, i, i+1)
	}
}
