package combat

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-testutil"
)

type holder map[game.Attribute]int

func (h holder) Attr(a game.Attribute) int { return a.Clamp(h[a]) }

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

func TestResolveAttack_HitRate(t *testing.T) {
	attacker := holder{game.AttrDexterity: 10}
	defender := holder{game.AttrDexterity: 5}
	r := rand.New(rand.NewPCG(11, 12))

	const trials = 10000
	hits := 0
	for range trials {
		if ResolveAttack(r, attacker, defender).Hit {
			hits++
		}
	}

	// (10+3) / (10+3+5)
	got := float64(hits) / trials
	if got < 0.70 || got > 0.745 {
		t.Errorf("hit rate %.3f, expected about 0.722", got)
	}
}

func TestResolveAttack(t *testing.T) {
	tests := map[string]struct {
		attacker  holder
		defender  holder
		floats    []float64
		norms     []float64
		expHit    bool
		expCrit   bool
		expDamage int
	}{
		"plain hit": {
			attacker:  holder{game.AttrDexterity: 10, game.AttrDamage: 4, game.AttrStrength: 9},
			defender:  holder{game.AttrDexterity: 5},
			floats:    []float64{0.1, 0.1},
			expHit:    true,
			expDamage: 8,
		},
		"miss": {
			attacker: holder{game.AttrDexterity: 10, game.AttrDamage: 4},
			defender: holder{game.AttrDexterity: 5},
			floats:   []float64{0.9, 0.1},
		},
		"lucky critical": {
			attacker:  holder{game.AttrDexterity: 10, game.AttrDamage: 4, game.AttrLuck: 100},
			defender:  holder{game.AttrDexterity: 5},
			floats:    []float64{0.1, 0.1},
			expHit:    true,
			expCrit:   true,
			expDamage: 8,
		},
		"miss saved by luck": {
			attacker:  holder{game.AttrDexterity: 10, game.AttrDamage: 4, game.AttrLuck: 100},
			defender:  holder{game.AttrDexterity: 5},
			floats:    []float64{0.9, 0.1},
			expHit:    true,
			expDamage: 4,
		},
		"spread clamped high": {
			attacker:  holder{game.AttrDexterity: 10, game.AttrDamage: 4, game.AttrDamageSpread: 2, game.AttrStrength: 9},
			defender:  holder{},
			floats:    []float64{0.1, 0.1},
			norms:     []float64{3},
			expHit:    true,
			expDamage: 12,
		},
		"spread clamped low": {
			attacker:  holder{game.AttrDexterity: 10, game.AttrDamage: 4, game.AttrDamageSpread: 2, game.AttrStrength: 9},
			defender:  holder{},
			floats:    []float64{0.1, 0.1},
			norms:     []float64{-3},
			expHit:    true,
			expDamage: 4,
		},
		"damage floor of one": {
			attacker:  holder{game.AttrDexterity: 10},
			defender:  holder{},
			floats:    []float64{0.1, 0.1},
			expHit:    true,
			expDamage: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := &scriptedRand{floats: tt.floats, norms: tt.norms}
			a := ResolveAttack(r, tt.attacker, tt.defender)
			testutil.AssertEqual(t, "hit", a.Hit, tt.expHit)
			testutil.AssertEqual(t, "critical", a.Critical, tt.expCrit)
			testutil.AssertEqual(t, "damage", a.Damage, tt.expDamage)
		})
	}
}

func TestInitiative(t *testing.T) {
	self := holder{game.AttrAgility: 8, game.AttrLuck: 100}
	opponent := holder{}

	testutil.AssertEqual(t, "boosted", Initiative(&scriptedRand{floats: []float64{0.1}}, self, opponent), 10)
	testutil.AssertEqual(t, "plain", Initiative(&scriptedRand{floats: []float64{0.9}}, self, opponent), 8)
}

func fighters() (Combatant, Combatant) {
	player := Combatant{Name: "Ann", AttributeHolder: holder{
		game.AttrDexterity: 10, game.AttrAgility: 4, game.AttrStamina: 5, game.AttrDamage: 3,
	}}
	enemy := Combatant{Name: "Rat", AttributeHolder: holder{
		game.AttrDexterity: 5, game.AttrAgility: 6, game.AttrStamina: 1,
	}}
	return player, enemy
}

func TestStart(t *testing.T) {
	player, enemy := fighters()
	s := Start(&scriptedRand{}, 1, 20, player, 9, enemy)

	testutil.AssertEqual(t, "player initiative", s.PlayerInitiative, 4)
	testutil.AssertEqual(t, "enemy initiative", s.EnemyInitiative, 6)
	testutil.AssertEqual(t, "enemy health", s.EnemyHealth, 5)
	testutil.AssertEqual(t, "player health", s.PlayerHealth, 20)
	testutil.AssertEqual(t, "lower initiative acts", s.Turn, SidePlayer)
}

func TestNextTurn_Tie(t *testing.T) {
	s := State{PlayerInitiative: 5, EnemyInitiative: 5}
	lucky := Combatant{Name: "Lucky", AttributeHolder: holder{game.AttrLuck: 30}}
	plain := Combatant{Name: "Plain", AttributeHolder: holder{game.AttrLuck: 10}}

	testutil.AssertEqual(t, "luckier enemy", nextTurn(&scriptedRand{floats: []float64{0.7}}, s, plain, lucky), SideEnemy)
	testutil.AssertEqual(t, "luckier player", nextTurn(&scriptedRand{floats: []float64{0.7}}, s, lucky, plain), SidePlayer)
	testutil.AssertEqual(t, "no luck at all", nextTurn(&scriptedRand{}, s, Combatant{AttributeHolder: holder{}}, Combatant{AttributeHolder: holder{}}), SidePlayer)
}

func TestPlayerAttack(t *testing.T) {
	player, enemy := fighters()

	t.Run("defeats enemy", func(t *testing.T) {
		s := State{PlayerHealth: 20, EnemyHealth: 3, Turn: SidePlayer}
		step, err := PlayerAttack(&scriptedRand{floats: []float64{0.1}}, s, player, enemy)
		if err != nil {
			t.Fatalf("attack: %v", err)
		}
		testutil.AssertEqual(t, "outcome", step.Outcome, EnemyDefeated)
		testutil.AssertEqual(t, "enemy health", step.State.EnemyHealth, 0)
		testutil.AssertEqual(t, "events", len(step.Events), 2)
		testutil.AssertEqual(t, "narration", step.Events[0], "You attack for 3!")
		testutil.AssertEqual(t, "defeat", step.Events[1], "Rat lies defeated!")
	})

	t.Run("miss passes the turn", func(t *testing.T) {
		s := State{PlayerHealth: 20, EnemyHealth: 5, PlayerInitiative: 4, EnemyInitiative: 6, Turn: SidePlayer}
		step, err := PlayerAttack(&scriptedRand{floats: []float64{0.95}}, s, player, enemy)
		if err != nil {
			t.Fatalf("attack: %v", err)
		}
		testutil.AssertEqual(t, "outcome", step.Outcome, Continue)
		testutil.AssertEqual(t, "narration", step.Events[0], "You attack, but miss!")
		testutil.AssertEqual(t, "initiative accrued", step.State.PlayerInitiative, 8)
		testutil.AssertEqual(t, "enemy next", step.State.Turn, SideEnemy)
	})

	t.Run("out of turn", func(t *testing.T) {
		s := State{Turn: SideEnemy, EnemyHealth: 5}
		step, err := PlayerAttack(&scriptedRand{}, s, player, enemy)
		if !errors.Is(err, ErrNotYourTurn) {
			t.Errorf("expected ErrNotYourTurn, got %v", err)
		}
		testutil.AssertEqual(t, "unchanged", step.State, s)
	})
}

func TestPlayerFlee(t *testing.T) {
	player := Combatant{Name: "Ann", AttributeHolder: holder{game.AttrLuck: 30, game.AttrAgility: 4}}
	enemy := Combatant{Name: "Rat", AttributeHolder: holder{game.AttrLuck: 10, game.AttrAgility: 6}}
	s := State{PlayerInitiative: 4, EnemyInitiative: 6, Turn: SidePlayer}

	step, err := PlayerFlee(&scriptedRand{floats: []float64{0.5}}, s, player, enemy)
	if err != nil {
		t.Fatalf("flee: %v", err)
	}
	testutil.AssertEqual(t, "fled", step.Outcome, PlayerFled)
	testutil.AssertEqual(t, "narration", step.Events[0], "You flee to safety!")

	// 0.8*40 = 32 is not below 30; the luck check for initiative then fails
	step, err = PlayerFlee(&scriptedRand{floats: []float64{0.8, 0.9}}, s, player, enemy)
	if err != nil {
		t.Fatalf("flee: %v", err)
	}
	testutil.AssertEqual(t, "stuck", step.Outcome, Continue)
	testutil.AssertEqual(t, "narration", step.Events[0], "Can't run away!")
	testutil.AssertEqual(t, "turn used", step.State.Turn, SideEnemy)
}

func TestEnemyTurn(t *testing.T) {
	player, enemy := fighters()

	t.Run("kills player", func(t *testing.T) {
		s := State{PlayerHealth: 1, EnemyHealth: 5, Turn: SideEnemy}
		step, err := EnemyTurn(&scriptedRand{floats: []float64{0.01}}, s, player, enemy)
		if err != nil {
			t.Fatalf("enemy turn: %v", err)
		}
		testutil.AssertEqual(t, "outcome", step.Outcome, PlayerDied)
		testutil.AssertEqual(t, "player health", step.State.PlayerHealth, 0)
		testutil.AssertEqual(t, "narration", step.Events[0], "Rat attacks for 1!")
		testutil.AssertEqual(t, "death", step.Events[1], "💀 You died")
	})

	t.Run("misses", func(t *testing.T) {
		s := State{PlayerHealth: 10, EnemyHealth: 5, PlayerInitiative: 8, EnemyInitiative: 6, Turn: SideEnemy}
		step, err := EnemyTurn(&scriptedRand{floats: []float64{0.99}}, s, player, enemy)
		if err != nil {
			t.Fatalf("enemy turn: %v", err)
		}
		testutil.AssertEqual(t, "narration", step.Events[0], "Rat attacks, but misses!")
		testutil.AssertEqual(t, "health kept", step.State.PlayerHealth, 10)
		testutil.AssertEqual(t, "initiative accrued", step.State.EnemyInitiative, 12)
		testutil.AssertEqual(t, "player next", step.State.Turn, SidePlayer)
	})
}

func TestState_JSON(t *testing.T) {
	s := State{PlayerID: 1, EnemyID: 2, PlayerHealth: 3, EnemyHealth: 4, PlayerInitiative: 5, EnemyInitiative: 6, Turn: SideEnemy}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got State
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	testutil.AssertEqual(t, "state", got, s)

	err = json.Unmarshal([]byte(`{"turn": "nobody"}`), &got)
	testutil.AssertErrorContains(t, err, "unknown side")
}

func TestDescribe(t *testing.T) {
	player, enemy := fighters()
	s := State{PlayerHealth: 12, EnemyHealth: 2}

	testutil.AssertEqual(t, "description", Describe(s, player, enemy), "A fight against Rat!\nYou: 12/25 HP\nRat 2/5 HP")
	testutil.AssertEqual(t, "begin", BeginMessage(enemy, "A big rat."), "A fight with Rat!\nA big rat.")
}
