package game

import (
	"math/rand/v2"
	"testing"

	"github.com/pixil98/go-testutil"
)

type holder map[Attribute]int

func (h holder) Attr(a Attribute) int { return a.Clamp(h[a]) }

func TestXPToNextLevel(t *testing.T) {
	tests := map[string]struct {
		level int
		exp   int
	}{
		"level 1":  {level: 1, exp: 13},
		"level 2":  {level: 2, exp: 15},
		"level 10": {level: 10, exp: 24},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "xp", XPToNextLevel(tt.level), tt.exp)
		})
	}
}

func TestMaxHealth(t *testing.T) {
	testutil.AssertEqual(t, "max health", MaxHealth(holder{AttrStamina: 7}), 35)
}

func TestLuckChecks(t *testing.T) {
	tests := map[string]struct {
		check func(r Rand) bool
		draw  float64
		exp   bool
	}{
		"solo succeeds below luck*0.005": {
			check: func(r Rand) bool { return SoloLuckCheck(r, holder{AttrLuck: 40}) },
			draw:  0.19,
			exp:   true,
		},
		"solo fails above threshold": {
			check: func(r Rand) bool { return SoloLuckCheck(r, holder{AttrLuck: 40}) },
			draw:  0.21,
			exp:   false,
		},
		"solo luck is clamped": {
			check: func(r Rand) bool { return SoloLuckCheck(r, holder{AttrLuck: 500}) },
			draw:  0.51,
			exp:   false,
		},
		"opposed scaled by opponent": {
			// 50*0.006*(1-50*0.008) = 0.18
			check: func(r Rand) bool { return OpposedLuckCheck(r, holder{AttrLuck: 50}, 50) },
			draw:  0.17,
			exp:   true,
		},
		"opposed fails above scaled chance": {
			check: func(r Rand) bool { return OpposedLuckCheck(r, holder{AttrLuck: 50}, 50) },
			draw:  0.19,
			exp:   false,
		},
		"zero luck never succeeds": {
			check: func(r Rand) bool { return OpposedLuckCheck(r, holder{}, 0) },
			draw:  0,
			exp:   false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.check(&scriptedRand{floats: []float64{tt.draw}})
			testutil.AssertEqual(t, "result", got, tt.exp)
		})
	}
}

func TestChooseFirst(t *testing.T) {
	tests := map[string]struct {
		first, second float64
		draw          float64
		exp           bool
	}{
		"first wins low draw":   {first: 1, second: 3, draw: 0.2, exp: true},
		"second wins high draw": {first: 1, second: 3, draw: 0.3, exp: false},
		"both zero picks second": {first: 0, second: 0, draw: 0, exp: false},
		"zero first never wins": {first: 0, second: 5, draw: 0, exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := ChooseFirst(&scriptedRand{floats: []float64{tt.draw}}, tt.first, tt.second)
			testutil.AssertEqual(t, "first", got, tt.exp)
		})
	}
}

func TestShuffled(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := Shuffled(rand.New(rand.NewPCG(5, 6)), in)

	testutil.AssertEqual(t, "length", len(out), len(in))
	testutil.AssertEqual(t, "input untouched", in[0], 1)

	sum := 0
	for _, v := range out {
		sum += v
	}
	testutil.AssertEqual(t, "same elements", sum, 15)
}
