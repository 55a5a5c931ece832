package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"
)

// manualScheduler queues tasks until the test runs them. With inline set,
// Submit runs the task straight away.
type manualScheduler struct {
	inline  bool
	queue   []func()
	delayed []func()
	delays  []time.Duration
}

func (m *manualScheduler) Submit(task func()) error {
	if m.inline {
		task()
		return nil
	}
	m.queue = append(m.queue, task)
	return nil
}

func (m *manualScheduler) SubmitAfter(d time.Duration, task func()) error {
	m.delayed = append(m.delayed, task)
	m.delays = append(m.delays, d)
	return nil
}

func (m *manualScheduler) runPending() {
	for len(m.queue) > 0 {
		task := m.queue[0]
		m.queue = m.queue[1:]
		task()
	}
}

func (m *manualScheduler) fireDelayed() {
	tasks := m.delayed
	m.delayed, m.delays = nil, nil
	for _, task := range tasks {
		task()
	}
	m.runPending()
}

// recordingFrontend remembers every callback.
type recordingFrontend struct {
	changed []int64
	events  []string
}

func (f *recordingFrontend) PlayerActivityChanged(p *Player) {
	f.changed = append(f.changed, p.ID())
}

func (f *recordingFrontend) PlayerReceivedEvent(p *Player, message string) {
	f.events = append(f.events, fmt.Sprintf("%s: %s", p.Name(), message))
}

func attrs(values map[Attribute]int) *AttributeSet {
	s := NewAttributeSet()
	for a, v := range values {
		s.Set(a, v)
	}
	return s
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	locations := []*Location{
		{ID: 0, Name: "Town", Description: "A quiet town.", Directions: map[string]int64{"north": 1}, Graveyard: 0},
		{ID: 1, Name: "Forest", Description: "Dark trees.", Directions: map[string]int64{"south": 0}, Graveyard: 0,
			Encounters: []Encounter{{EnemyID: 1, Rarity: 1}}},
	}
	items := []*Item{
		{ID: 1, Type: ItemWeapon, Name: "Stick", Value: 1, Attributes: attrs(map[Attribute]int{AttrDamage: 2}).Freeze()},
		{ID: 2, Type: ItemArmorHead, Name: "Pot", Value: 3, Attributes: attrs(map[Attribute]int{AttrArmor: 1, AttrStamina: 2}).Freeze()},
		{ID: 3, Type: ItemJunk, Name: "Pebble", Value: ValueCantSell, Attributes: NewAttributeSet().Freeze()},
	}
	enemies := []*Enemy{
		NewEnemy(1, "Rat", "A big rat.", attrs(map[Attribute]int{AttrLevel: 1, AttrStamina: 2, AttrDexterity: 3})),
	}

	c, err := NewCatalog(locations, items, enemies)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return c
}

// room is a per-location activity with a single action.
type room struct {
	ActivityBase
	loc    *Location
	begins int
	ends   int
	pokes  int
}

func (r *room) Kind() string { return "room" }

func (r *room) Init() error {
	return r.Session().AddAction(r, NewAction("room.poke", "", "Poke", BehaviorFunc(func(p *Player) {
		r.pokes++
	})))
}

func (r *room) Begin(p *Player) { r.begins++ }
func (r *room) End(p *Player)   { r.ends++ }
func (r *room) Description(p *Player) string {
	return "You are in " + r.loc.Name
}

// lobby is a singleton without actions.
type lobby struct {
	ActivityBase
}

func (l *lobby) Kind() string                 { return "lobby" }
func (l *lobby) Begin(p *Player)              {}
func (l *lobby) End(p *Player)                {}
func (l *lobby) Description(p *Player) string { return "Waiting" }

// duel is a custom activity with its own state. It admits one player.
type duel struct {
	ActivityBase
	Round   int `json:"round"`
	resumed int
}

func (d *duel) Kind() string                 { return "duel" }
func (d *duel) Begin(p *Player)              {}
func (d *duel) End(p *Player)                {}
func (d *duel) Description(p *Player) string { return fmt.Sprintf("Round %d", d.Round) }
func (d *duel) Resume()                      { d.resumed++ }

func (d *duel) Admit(p *Player) error {
	if len(d.Engaged()) > 0 {
		return ErrNotPermitted
	}
	return nil
}

func (d *duel) MarshalState() (json.RawMessage, error) {
	return json.Marshal(d)
}

func (d *duel) UnmarshalState(raw json.RawMessage) error {
	return json.Unmarshal(raw, d)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	for _, d := range []Descriptor{
		{Kind: "room", Lifecycle: PerLocation, New: func(loc *Location) Activity { return &room{loc: loc} }},
		{Kind: "lobby", Lifecycle: Singleton, New: func(*Location) Activity { return &lobby{} }},
		{Kind: "duel", Lifecycle: Custom, New: func(*Location) Activity { return &duel{} }},
	} {
		if err := r.Register(d); err != nil {
			t.Fatalf("registering %q: %v", d.Kind, err)
		}
	}
	return r
}

type fixture struct {
	sched    *manualScheduler
	frontend *recordingFrontend
	session  *Session
}

func newFixture(t *testing.T, opts ...SessionOpt) *fixture {
	t.Helper()

	f := &fixture{
		sched:    &manualScheduler{},
		frontend: &recordingFrontend{},
	}
	opts = append([]SessionOpt{
		WithDefaultActivity("room"),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithFrontend(f.frontend),
	}, opts...)

	s, err := NewSession(f.sched, testCatalog(t), testRegistry(t), opts...)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	f.session = s
	return f
}

func (f *fixture) player(t *testing.T, name string) *Player {
	t.Helper()
	p, err := f.session.CreatePlayer(name)
	if err != nil {
		t.Fatalf("creating player %q: %v", name, err)
	}
	return p
}

// assertEngagement checks that every activity lists exactly the players
// pointing at it.
func assertEngagement(t *testing.T, s *Session) {
	t.Helper()

	seen := map[Activity]bool{}
	for _, p := range s.Players() {
		a := p.Activity()
		if a == nil {
			t.Errorf("%s has no activity", p)
			continue
		}
		if !a.Base().IsEngaged(p) {
			t.Errorf("%s points at %q but is not engaged in it", p, a.Kind())
		}
		seen[a] = true
	}
	for a := range seen {
		for _, p := range a.Base().Engaged() {
			if p.Activity() != a {
				t.Errorf("%q lists %s who is elsewhere", a.Kind(), p)
			}
		}
	}
}

// scriptedRand returns queued values and shuffles nothing.
type scriptedRand struct {
	floats []float64
	norms  []float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.999
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) NormFloat64() float64 {
	if len(r.norms) == 0 {
		return 0
	}
	n := r.norms[0]
	r.norms = r.norms[1:]
	return n
}

func (r *scriptedRand) IntN(n int) int                     { return 0 }
func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}
