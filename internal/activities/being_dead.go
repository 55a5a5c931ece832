package activities

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-rpg/internal/game"
)

// deathKey is where a dead player's time of death is kept.
const deathKey = "being-dead"

// BeingDead holds players whose health ran out. They leave by selling their
// experience or by waiting out the rules' eternity.
type BeingDead struct {
	game.ActivityBase
}

func (d *BeingDead) Kind() string { return KindBeingDead }

func (d *BeingDead) Init() error {
	s := d.Session()
	err := s.AddAction(d, game.NewAction("being-dead.limbo.sell-your-soul", "Limbo",
		"Sell your soul for all your experience! (on this level)", game.BehaviorFunc(d.sellSoul)))
	if err != nil {
		return err
	}
	return s.AddAction(d, game.NewAction("being-dead.limbo.wait-for-eternity", "Limbo",
		"Wait for an eternity", game.BehaviorFunc(d.wait)))
}

func (d *BeingDead) Begin(p *game.Player) {
	if err := p.ActivityState.Set(deathKey, d.Session().Now()); err != nil {
		slog.Error("recording time of death", "player", p, "error", err)
	}
}

func (d *BeingDead) End(p *game.Player) {
	p.ActivityState.Delete(deathKey)
}

func (d *BeingDead) Description(p *game.Player) string {
	return "You are dead. Sell your soul (if you have any) or wait for an eternity"
}

func (d *BeingDead) sellSoul(p *game.Player) {
	s := d.Session()
	if p.Experience <= 0 {
		s.Notify(p, "FOOL! YOU DON'T HAVE ANY EXPERIENCE! YOU HAVE NOTHING TO OFFER!")
		return
	}
	p.Experience = 0
	d.resurrect(p)
}

func (d *BeingDead) wait(p *game.Player) {
	s := d.Session()
	freedIn := d.freedIn(p)
	if freedIn < 0 {
		s.Notify(p, "At last, after an eternity, you are free")
		d.resurrect(p)
		return
	}

	minutes := int(freedIn/time.Minute) + 1
	if minutes <= 1 {
		s.Notify(p, "No, you still have to wait for an eternity! (which is estimated to be very soon)")
		return
	}
	s.Notify(p, fmt.Sprintf("No, you still have to wait for an eternity! (which is estimated to be in around %d minutes)", minutes))
}

// freedIn is the time left until p has waited long enough. A missing time
// of death counts as dying just now.
func (d *BeingDead) freedIn(p *game.Player) time.Duration {
	s := d.Session()
	died := s.Now()
	if _, err := p.ActivityState.Get(deathKey, &died); err != nil {
		slog.Warn("reading time of death", "player", p, "error", err)
	}
	return died.Add(s.Rules().Eternity).Sub(s.Now())
}

// resurrect brings p back with a quarter of their health at the graveyard of
// the location they died in.
func (d *BeingDead) resurrect(p *game.Player) {
	s := d.Session()
	p.SetHealth(max(1, p.MaxHealth()/4))
	if grave, ok := s.Catalog().Location(p.Location().Graveyard); ok {
		s.ChangeLocation(p, grave)
	}
	if err := s.ChangeActivityToDefault(p); err != nil {
		slog.Error("resurrecting", "player", p, "error", err)
	}
}
