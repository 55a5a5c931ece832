package activities

import (
	"log/slog"

	"github.com/pixil98/go-rpg/internal/display"
	"github.com/pixil98/go-rpg/internal/game"
)

const locationDescription = `You are in {{ .Name }}: {{ .Description | trim }}`

// Location is the default activity: looking around a location and leaving it.
type Location struct {
	game.ActivityBase
	loc *game.Location
}

func NewLocation(loc *game.Location) *Location {
	return &Location{loc: loc}
}

func (l *Location) Kind() string { return KindLocation }

func (l *Location) Init() error {
	s := l.Session()

	err := s.AddAction(l, game.NewAction("location.look", "", "Look around", game.BehaviorFunc(func(p *game.Player) {
		s.Notify(p, "You see absolutely nothing interesting.")
	})))
	if err != nil {
		return err
	}

	for _, dir := range l.loc.DirectionNames() {
		to := l.loc.Directions[dir]
		act := game.NewAction("location.travel."+dir, "Travel", display.Capitalize(dir), game.BehaviorFunc(func(p *game.Player) {
			l.travel(p, to)
		}))
		if err := s.AddAction(l, act); err != nil {
			return err
		}
	}

	if l.loc.HasEnemies() {
		err := s.AddAction(l, game.NewAction("location.fight", "", "Look for a fight", game.BehaviorFunc(l.seekFight)))
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Location) Begin(p *game.Player) {}
func (l *Location) End(p *game.Player)   {}

func (l *Location) Description(p *game.Player) string {
	return display.MustExpand(locationDescription, l.loc)
}

// travel moves p and rolls for an ambush at the destination.
func (l *Location) travel(p *game.Player, to int64) {
	s := l.Session()
	dest, ok := s.Catalog().Location(to)
	if !ok {
		slog.Error("travel to unknown location", "player", p, "location", to)
		return
	}

	s.ChangeLocation(p, dest)
	if enemyID, ok := dest.Ambush(s.Rand()); ok {
		err := StartFight(s, p, enemyID)
		if err == nil {
			return
		}
		slog.Error("starting ambush", "player", p, "error", err)
	}
	if err := s.ChangeActivityToDefault(p); err != nil {
		slog.Error("entering location", "player", p, "error", err)
	}
}

func (l *Location) seekFight(p *game.Player) {
	s := l.Session()
	enemyID, ok := l.loc.SeekEncounter(s.Rand())
	if !ok {
		s.Notify(p, "There is nothing to fight here.")
		return
	}
	if err := StartFight(s, p, enemyID); err != nil {
		slog.Error("starting fight", "player", p, "error", err)
	}
}
