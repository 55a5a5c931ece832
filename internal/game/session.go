package game

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode"
)

// Scheduler runs game tasks one at a time.
type Scheduler interface {
	Submit(task func()) error
	SubmitAfter(delay time.Duration, task func()) error
}

// Session owns the players and every change made to them. Apart from
// construction and Load, its methods must run on the scheduler.
type Session struct {
	sched    Scheduler
	catalog  *Catalog
	registry *Registry
	cache    *ActivityCache
	rules    Rules
	rand     Rand
	now      func() time.Time

	defaultKind string
	frontends   []Frontend
	persister   *Persister

	players map[int64]*Player
	present map[int64][]*Player
}

func NewSession(sched Scheduler, catalog *Catalog, registry *Registry, opts ...SessionOpt) (*Session, error) {
	s := &Session{
		sched:    sched,
		catalog:  catalog,
		registry: registry,
		rules:    DefaultRules(),
		rand:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now:      time.Now,
		players:  map[int64]*Player{},
		present:  map[int64][]*Player{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newActivityCache(s, registry)

	desc, ok := registry.Lookup(s.defaultKind)
	if !ok {
		return nil, fmt.Errorf("default activity %q: %w", s.defaultKind, ErrUnknownActivity)
	}
	if desc.Lifecycle != PerLocation {
		return nil, fmt.Errorf("default activity %q must be per-location: %w", s.defaultKind, ErrLifecycleMismatch)
	}
	if err := s.rules.Validate(); err != nil {
		return nil, err
	}
	if err := s.rules.CheckCatalog(catalog); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) Catalog() *Catalog     { return s.catalog }
func (s *Session) Rules() Rules          { return s.rules }
func (s *Session) Rand() Rand            { return s.rand }
func (s *Session) Now() time.Time        { return s.now() }
func (s *Session) Cache() *ActivityCache { return s.cache }

// AddFrontend registers f for player notifications.
func (s *Session) AddFrontend(f Frontend) {
	s.frontends = append(s.frontends, f)
}

// Submit queues task on the scheduler.
func (s *Session) Submit(task func()) error {
	return s.sched.Submit(task)
}

// SubmitAfter queues task to run once delay has passed.
func (s *Session) SubmitAfter(delay time.Duration, task func()) error {
	return s.sched.SubmitAfter(delay, task)
}

// Call runs fn on the scheduler and waits for its result. It is how code
// outside the scheduler reads or changes game state.
func (s *Session) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	err := s.sched.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("task panicked: %v", r)
				panic(r)
			}
		}()
		done <- fn()
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreatePlayer registers a new player and puts them into the world at the
// starting location with the starting item equipped.
func (s *Session) CreatePlayer(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if _, err := s.FindPlayerByName(name); err == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrNameTaken)
	}

	attrs, err := s.rules.startingAttributes()
	if err != nil {
		return nil, err
	}

	var id int64
	for pid := range s.players {
		id = max(id, pid)
	}
	p := newPlayer(id+1, name, attrs)
	s.players[p.id] = p

	if err := s.initPlayer(p); err != nil {
		delete(s.players, p.id)
		return nil, err
	}

	slog.Info("player created", "player", p.name, "id", p.id)
	return p, nil
}

func (s *Session) initPlayer(p *Player) error {
	loc, _ := s.catalog.Location(s.rules.StartingLocation)
	item, _ := s.catalog.Item(s.rules.StartingItem)
	if err := p.Equip(item); err != nil {
		return err
	}
	p.health = p.MaxHealth()
	s.ChangeLocation(p, loc)
	return s.ChangeActivityToDefault(p)
}

// ValidName reports whether name can be a player name: one word of printable
// characters, so login names such as "user1" are accepted.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (s *Session) FindPlayer(id int64) (*Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("player %d: %w", id, ErrPlayerNotFound)
	}
	return p, nil
}

func (s *Session) FindPlayerByName(name string) (*Player, error) {
	for _, p := range s.players {
		if strings.EqualFold(p.name, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", name, ErrPlayerNotFound)
}

// Players returns every known player ordered by id.
func (s *Session) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Player) int { return cmp.Compare(a.id, b.id) })
	return out
}

// PlayersAt returns the players present at loc.
func (s *Session) PlayersAt(loc *Location) []*Player {
	return slices.Clone(s.present[loc.ID])
}

// ChangeActivity moves p into next. It is the only way a player's activity
// changes: the old activity is ended and left, next is bound if needed,
// entered and begun, and frontends are told.
func (s *Session) ChangeActivity(p *Player, next Activity) error {
	if next == nil {
		return fmt.Errorf("changing activity of %s: nil activity", p)
	}
	if g, ok := next.(Gate); ok {
		if err := g.Admit(p); err != nil {
			return err
		}
	}
	if err := s.cache.EnsureInitialized(next); err != nil {
		return err
	}

	if prev := p.activity; prev != nil {
		prev.End(p)
		s.detach(p)
	}
	s.attach(p, next)
	next.Begin(p)

	s.NotifyActivityChanged(p)
	return nil
}

// ChangeActivityTo enters the shared instance of kind for p.
func (s *Session) ChangeActivityTo(p *Player, kind string) error {
	desc, err := s.cache.descriptor(kind)
	if err != nil {
		return err
	}

	var a Activity
	switch desc.Lifecycle {
	case Singleton:
		a, err = s.cache.Singleton(kind)
	case PerLocation:
		a, err = s.cache.ForLocation(kind, p.location)
	default:
		err = fmt.Errorf("activity %q has no shared instance: %w", kind, ErrLifecycleMismatch)
	}
	if err != nil {
		return err
	}
	return s.ChangeActivity(p, a)
}

// ChangeActivityToDefault enters the default activity of p's location.
func (s *Session) ChangeActivityToDefault(p *Player) error {
	return s.ChangeActivityTo(p, s.defaultKind)
}

// ChangeLocation moves p to loc without touching their activity.
func (s *Session) ChangeLocation(p *Player, loc *Location) {
	if p.location != nil {
		s.removePresence(p)
	}
	p.location = loc
	s.present[loc.ID] = append(s.present[loc.ID], p)
}

func (s *Session) removePresence(p *Player) {
	list := s.present[p.location.ID]
	if i := slices.Index(list, p); i >= 0 {
		s.present[p.location.ID] = slices.Delete(list, i, i+1)
	}
}

func (s *Session) attach(p *Player, a Activity) {
	p.activity = a
	a.Base().engage(p)
	s.cache.track(a)
}

func (s *Session) detach(p *Player) {
	a := p.activity
	a.Base().disengage(p)
	p.activity = nil
	s.cache.track(a)
}

// NotifyActivityChanged tells frontends that p's view changed.
func (s *Session) NotifyActivityChanged(p *Player) {
	for _, f := range s.frontends {
		f.PlayerActivityChanged(p)
	}
}

// Notify sends a narrative message to p.
func (s *Session) Notify(p *Player, message string) {
	for _, f := range s.frontends {
		f.PlayerReceivedEvent(p, message)
	}
}

// AddAction adds act to a. Keys are unique within an activity.
func (s *Session) AddAction(a Activity, act *Action) error {
	b := a.Base()
	if b.Action(act.key) != nil {
		return fmt.Errorf("activity %q already has action %q", a.Kind(), act.key)
	}
	act.owner = a
	b.actions = append(b.actions, act)
	s.notifyEngaged(a)
	return nil
}

// RemoveAction drops the action with key from a.
func (s *Session) RemoveAction(a Activity, key string) bool {
	b := a.Base()
	i := slices.IndexFunc(b.actions, func(act *Action) bool { return act.key == key })
	if i < 0 {
		return false
	}
	b.actions[i].owner = nil
	b.actions = slices.Delete(b.actions, i, i+1)
	s.notifyEngaged(a)
	return true
}

// SetActionEnabled toggles one action of a.
func (s *Session) SetActionEnabled(a Activity, key string, enabled bool) {
	act := a.Base().Action(key)
	if act == nil || act.enabled == enabled {
		return
	}
	act.enabled = enabled
	s.notifyEngaged(a)
}

// SetActionsEnabled toggles every action of a.
func (s *Session) SetActionsEnabled(a Activity, enabled bool) {
	changed := false
	for _, act := range a.Base().actions {
		if act.enabled != enabled {
			act.enabled = enabled
			changed = true
		}
	}
	if changed {
		s.notifyEngaged(a)
	}
}

func (s *Session) notifyEngaged(a Activity) {
	for _, p := range a.Base().engaged {
		s.NotifyActivityChanged(p)
	}
}
