package activities

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-rpg/internal/game"
)

// LevelUp turns collected experience into a level and lets the player spend
// the virtue points that come with it.
type LevelUp struct {
	game.ActivityBase
}

// virtues are the attributes a player can raise. Luck is left to chance.
func virtues() []game.Attribute {
	var out []game.Attribute
	for _, a := range game.Attributes() {
		if a.Kind() == game.KindVirtue && a != game.AttrLuck {
			out = append(out, a)
		}
	}
	return out
}

func (l *LevelUp) Kind() string { return KindLevelUp }

func (l *LevelUp) Init() error {
	s := l.Session()
	for _, attr := range virtues() {
		key := "level-up.virtue." + strings.ToLower(attr.String())
		act := game.NewAction(key, "Add virtue point", "To "+attr.String(), game.BehaviorFunc(func(p *game.Player) {
			l.raise(p, attr)
		}))
		if err := s.AddAction(l, act); err != nil {
			return err
		}
	}
	return nil
}

func (l *LevelUp) Begin(p *game.Player) {
	s := l.Session()
	next := p.XPToNextLevel()
	if p.Experience < next {
		l.leave(p)
		return
	}

	p.Experience -= next
	level := p.Attributes.Add(game.AttrLevel, 1)
	p.VirtuePoints += s.Rules().VirtuePointsPerLevel
	s.Notify(p, fmt.Sprintf("🎉 You have reached level %d!", level))
}

func (l *LevelUp) End(p *game.Player) {}

func (l *LevelUp) Description(p *game.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d virtue points and:\n", p.VirtuePoints)
	for _, attr := range virtues() {
		fmt.Fprintf(&b, "%s: %d\n", attr, p.Attr(attr))
	}
	return b.String()
}

func (l *LevelUp) raise(p *game.Player, attr game.Attribute) {
	if p.VirtuePoints > 0 {
		p.Attributes.Add(attr, 1)
		p.VirtuePoints--
	}
	if p.VirtuePoints <= 0 {
		l.leave(p)
		return
	}
	l.Session().NotifyActivityChanged(p)
}

func (l *LevelUp) leave(p *game.Player) {
	if err := l.Session().ChangeActivityToDefault(p); err != nil {
		slog.Error("leaving level up", "player", p, "error", err)
	}
}
