package activities

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/game"
)

const (
	KindLocation  = "location"
	KindFighting  = "fighting"
	KindBeingDead = "being-dead"
	KindLevelUp   = "level-up"
)

// Register adds every activity kind of the game to r. KindLocation is meant
// to be the session's default activity.
func Register(r *game.Registry) error {
	el := errors.NewErrorList()
	el.Add(r.Register(game.Descriptor{
		Kind:      KindLocation,
		Lifecycle: game.PerLocation,
		New:       func(loc *game.Location) game.Activity { return NewLocation(loc) },
	}))
	el.Add(r.Register(game.Descriptor{
		Kind:      KindFighting,
		Lifecycle: game.Custom,
		New:       func(*game.Location) game.Activity { return &Fighting{} },
	}))
	el.Add(r.Register(game.Descriptor{
		Kind:      KindBeingDead,
		Lifecycle: game.Singleton,
		New:       func(*game.Location) game.Activity { return &BeingDead{} },
	}))
	el.Add(r.Register(game.Descriptor{
		Kind:      KindLevelUp,
		Lifecycle: game.Singleton,
		New:       func(*game.Location) game.Activity { return &LevelUp{} },
	}))
	return el.Err()
}

// NewRegistry returns a registry holding every activity kind of the game.
func NewRegistry() (*game.Registry, error) {
	r := game.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// StartFight puts p into a new fight against the enemy with enemyID.
func StartFight(s *game.Session, p *game.Player, enemyID int64) error {
	enemy, ok := s.Catalog().Enemy(enemyID)
	if !ok {
		return fmt.Errorf("enemy %d not in catalog", enemyID)
	}
	return s.ChangeActivity(p, NewFighting(p, enemy))
}

// GiveExperience awards xp to p. Reaching the next level threshold sends
// the player into the level-up activity.
func GiveExperience(s *game.Session, p *game.Player, xp int) error {
	p.Experience += xp
	next := p.XPToNextLevel()
	if p.Experience >= next {
		s.Notify(p, fmt.Sprintf("You have gained %d xp", xp))
		return s.ChangeActivityTo(p, KindLevelUp)
	}
	s.Notify(p, fmt.Sprintf("You have gained %d xp (%d%% to next level)", xp, p.Experience*100/next))
	return nil
}
