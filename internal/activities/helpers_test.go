package activities

import (
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-rpg/internal/game"
)

// manualScheduler queues tasks until the test runs them.
type manualScheduler struct {
	queue   []func()
	delayed []func()
	delays  []time.Duration
}

func (m *manualScheduler) Submit(task func()) error {
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

// scriptedRand hands out queued floats, then 0.999. Normal samples are 0 and
// shuffles keep the order.
type scriptedRand struct {
	floats []float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.999
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) NormFloat64() float64               { return 0 }
func (r *scriptedRand) IntN(n int) int                     { return 0 }
func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

type recordingFrontend struct {
	events []string
}

func (f *recordingFrontend) PlayerActivityChanged(p *game.Player) {}

func (f *recordingFrontend) PlayerReceivedEvent(p *game.Player, message string) {
	f.events = append(f.events, fmt.Sprintf("%s: %s", p.Name(), message))
}

func (f *recordingFrontend) last() string {
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1]
}

func attrs(values map[game.Attribute]int) *game.AttributeSet {
	s := game.NewAttributeSet()
	for a, v := range values {
		s.Set(a, v)
	}
	return s
}

// worldCatalog is a town with a graveyard, a quiet forest and a cave where a
// bat always waits.
func worldCatalog(t *testing.T) *game.Catalog {
	t.Helper()

	locations := []*game.Location{
		{ID: 0, Name: "Town", Description: "A quiet town.  ", Directions: map[string]int64{"north": 1, "east": 2}, Graveyard: 3},
		{ID: 1, Name: "Forest", Description: "Dark trees.", Directions: map[string]int64{"south": 0}, Graveyard: 3,
			Encounters: []game.Encounter{{EnemyID: 1, Rarity: 1}}},
		{ID: 2, Name: "Cave", Description: "Drip.", Directions: map[string]int64{"west": 0}, Graveyard: 3,
			Encounters: []game.Encounter{{EnemyID: 1, Rarity: 2}}},
		{ID: 3, Name: "Graveyard", Description: "Stones.", Directions: map[string]int64{"south": 0}, Graveyard: 3},
	}
	items := []*game.Item{
		{ID: 1, Type: game.ItemWeapon, Name: "Club", Value: 1, Attributes: attrs(map[game.Attribute]int{game.AttrDamage: 5}).Freeze()},
	}
	enemies := []*game.Enemy{
		game.NewEnemy(1, "Bat", "A loud bat.", attrs(map[game.Attribute]int{
			game.AttrLevel: 1, game.AttrStamina: 1, game.AttrAgility: 10, game.AttrLuck: 5,
		})),
	}

	c, err := game.NewCatalog(locations, items, enemies)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return c
}

type fixture struct {
	sched    *manualScheduler
	rand     *scriptedRand
	frontend *recordingFrontend
	now      time.Time
	session  *game.Session
}

func newFixture(t *testing.T, opts ...game.SessionOpt) *fixture {
	t.Helper()

	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	f := &fixture{
		sched:    &manualScheduler{},
		rand:     &scriptedRand{},
		frontend: &recordingFrontend{},
		now:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	opts = append([]game.SessionOpt{
		game.WithDefaultActivity(KindLocation),
		game.WithRand(f.rand),
		game.WithClock(func() time.Time { return f.now }),
		game.WithFrontend(f.frontend),
	}, opts...)
	s, err := game.NewSession(f.sched, worldCatalog(t), reg, opts...)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	f.session = s
	return f
}

func (f *fixture) player(t *testing.T, name string) *game.Player {
	t.Helper()
	p, err := f.session.CreatePlayer(name)
	if err != nil {
		t.Fatalf("creating player %q: %v", name, err)
	}
	return p
}

func (f *fixture) script(floats ...float64) {
	f.rand.floats = append(f.rand.floats, floats...)
}

// perform triggers the action with key in p's current activity.
func perform(t *testing.T, p *game.Player, key string) error {
	t.Helper()
	return game.Perform(p, p.Activity().Base().Action(key))
}

func actionKeys(p *game.Player) []string {
	var keys []string
	for _, a := range p.Activity().Base().EnabledActions() {
		keys = append(keys, a.Key())
	}
	return keys
}
