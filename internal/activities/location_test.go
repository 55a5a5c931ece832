package activities

import (
	"slices"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestLocation_Actions(t *testing.T) {
	tests := map[string]struct {
		location int64
		expKeys  []string
	}{
		"town without enemies": {
			location: 0,
			expKeys:  []string{"location.look", "location.travel.east", "location.travel.north"},
		},
		"forest with enemies": {
			location: 1,
			expKeys:  []string{"location.look", "location.travel.south", "location.fight"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ann := f.player(t, "Ann")
			loc, _ := f.session.Catalog().Location(tt.location)
			f.session.ChangeLocation(ann, loc)
			if err := f.session.ChangeActivityToDefault(ann); err != nil {
				t.Fatalf("default: %v", err)
			}

			keys := actionKeys(ann)
			if !slices.Equal(keys, tt.expKeys) {
				t.Errorf("expected %v, got %v", tt.expKeys, keys)
			}
		})
	}
}

func TestLocation_LookAndDescribe(t *testing.T) {
	f := newFixture(t)
	ann := f.player(t, "Ann")

	testutil.AssertEqual(t, "description", ann.Activity().Description(ann), "You are in Town: A quiet town.")
	if err := perform(t, ann, "location.look"); err != nil {
		t.Fatalf("look: %v", err)
	}
	testutil.AssertEqual(t, "event", f.frontend.last(), "Ann: You see absolutely nothing interesting.")
}

func TestLocation_Travel(t *testing.T) {
	f := newFixture(t)
	ann := f.player(t, "Ann")
	town := ann.Activity()

	if err := perform(t, ann, "location.travel.north"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	testutil.AssertEqual(t, "arrived", ann.Location().Name, "Forest")
	testutil.AssertEqual(t, "activity", ann.Activity().Kind(), KindLocation)
	testutil.AssertEqual(t, "new instance", ann.Activity() != town, true)
	testutil.AssertEqual(t, "town empty", len(town.Base().Engaged()), 0)
	testutil.AssertEqual(t, "forest room", ann.Activity().Description(ann), "You are in Forest: Dark trees.")

	if err := perform(t, ann, "location.travel.south"); err != nil {
		t.Fatalf("travel back: %v", err)
	}
	testutil.AssertEqual(t, "same town instance", ann.Activity() == town, true)
}

func TestLocation_Ambush(t *testing.T) {
	f := newFixture(t)
	ann := f.player(t, "Ann")

	if err := perform(t, ann, "location.travel.east"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	testutil.AssertEqual(t, "in cave", ann.Location().Name, "Cave")
	testutil.AssertEqual(t, "ambushed", ann.Activity().Kind(), KindFighting)
	testutil.AssertEqual(t, "told", f.frontend.last(), "Ann: A fight with Bat!\nA loud bat.")
}

func TestLocation_SeekFight(t *testing.T) {
	f := newFixture(t)
	ann := f.player(t, "Ann")
	forest, _ := f.session.Catalog().Location(1)
	f.session.ChangeLocation(ann, forest)
	if err := f.session.ChangeActivityToDefault(ann); err != nil {
		t.Fatalf("default: %v", err)
	}

	if err := perform(t, ann, "location.fight"); err != nil {
		t.Fatalf("seeking: %v", err)
	}
	testutil.AssertEqual(t, "fighting", ann.Activity().Kind(), KindFighting)
	testutil.AssertEqual(t, "still in forest", ann.Location().Name, "Forest")
}
