package activities

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-rpg/internal/combat"
	"github.com/pixil98/go-rpg/internal/game"
)

const (
	actionAttack = "fighting.combat.attack"
	actionFlee   = "fighting.combat.flee"
)

// Fighting is one player's fight against one enemy. Player actions are only
// enabled on the player's turn; enemy turns run as delayed scheduler tasks.
type Fighting struct {
	game.ActivityBase

	player *game.Player
	enemy  *game.Enemy
	state  combat.State

	// generation invalidates continuations scheduled before the last change.
	generation int
}

func NewFighting(p *game.Player, enemy *game.Enemy) *Fighting {
	return &Fighting{player: p, enemy: enemy}
}

func (f *Fighting) Kind() string { return KindFighting }

func (f *Fighting) Init() error {
	s := f.Session()
	if err := s.AddAction(f, game.NewAction(actionAttack, "Combat", "Attack!", game.BehaviorFunc(f.attack)).Disabled()); err != nil {
		return err
	}
	return s.AddAction(f, game.NewAction(actionFlee, "Combat", "Run away!", game.BehaviorFunc(f.flee)).Disabled())
}

// Admit lets in only the player the fight was started for, and only once.
func (f *Fighting) Admit(p *game.Player) error {
	if f.player != nil && p != f.player {
		return fmt.Errorf("only %s can take part in this fight: %w", f.player, game.ErrNotPermitted)
	}
	if len(f.Engaged()) > 0 {
		return fmt.Errorf("fight already has its participant: %w", game.ErrNotPermitted)
	}
	return nil
}

func (f *Fighting) Begin(p *game.Player) {
	s := f.Session()
	f.player = p
	f.state = combat.Start(s.Rand(), p.ID(), p.Health(), f.playerSide(), f.enemy.ID, f.enemySide())
	s.Notify(p, combat.BeginMessage(f.enemySide(), f.enemy.Description))
	f.schedule(0)
}

func (f *Fighting) End(p *game.Player) {
	f.generation++
}

func (f *Fighting) Description(p *game.Player) string {
	return combat.Describe(f.synced(), f.playerSide(), f.enemySide())
}

func (f *Fighting) MarshalState() (json.RawMessage, error) {
	if f.player == nil || f.enemy == nil {
		return nil, fmt.Errorf("fight was never started")
	}
	f.state.PlayerHealth = f.player.Health()
	return json.Marshal(f.state)
}

func (f *Fighting) UnmarshalState(raw json.RawMessage) error {
	var st combat.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}

	s := f.Session()
	enemy, ok := s.Catalog().Enemy(st.EnemyID)
	if !ok {
		return fmt.Errorf("enemy %d no longer exists", st.EnemyID)
	}
	p, err := s.FindPlayer(st.PlayerID)
	if err != nil {
		return err
	}

	f.player, f.enemy, f.state = p, enemy, st
	return nil
}

// Resume continues a restored fight straight away, without waiting out the
// delay that was pending when it was saved.
func (f *Fighting) Resume() {
	f.schedule(0)
}

func (f *Fighting) playerSide() combat.Combatant { return combat.PlayerCombatant(f.player) }
func (f *Fighting) enemySide() combat.Combatant  { return combat.EnemyCombatant(f.enemy) }

// evaluate hands the turn to whoever is next. The player gets their actions
// enabled; the enemy attacks and the fight is paced by the rules' delay.
func (f *Fighting) evaluate() {
	s := f.Session()
	if f.state.Turn == combat.SidePlayer {
		s.SetActionsEnabled(f, true)
		return
	}
	s.SetActionsEnabled(f, false)

	step, err := combat.EnemyTurn(s.Rand(), f.synced(), f.playerSide(), f.enemySide())
	if err != nil {
		slog.Error("enemy turn", "player", f.player, "error", err)
		return
	}
	f.apply(step)
}

func (f *Fighting) attack(p *game.Player) {
	f.act(combat.PlayerAttack)
}

func (f *Fighting) flee(p *game.Player) {
	f.act(combat.PlayerFlee)
}

type playerStep func(r game.Rand, s combat.State, player, enemy combat.Combatant) (combat.Step, error)

func (f *Fighting) act(step playerStep) {
	s := f.Session()
	s.SetActionsEnabled(f, false)

	st, err := step(s.Rand(), f.synced(), f.playerSide(), f.enemySide())
	if err != nil {
		slog.Warn("player acted out of turn", "player", f.player, "error", err)
		return
	}
	f.apply(st)
}

// synced returns the fight state with the player's current health.
func (f *Fighting) synced() combat.State {
	st := f.state
	st.PlayerHealth = f.player.Health()
	return st
}

func (f *Fighting) apply(step combat.Step) {
	s := f.Session()
	p := f.player

	f.state = step.State
	p.SetHealth(step.State.PlayerHealth)
	for _, ev := range step.Events {
		s.Notify(p, ev)
	}

	var err error
	switch step.Outcome {
	case combat.Continue:
		f.schedule(s.Rules().EnemyTurnDelay)
		s.NotifyActivityChanged(p)
	case combat.EnemyDefeated:
		if err = s.ChangeActivityToDefault(p); err == nil {
			err = GiveExperience(s, p, f.enemy.KillExperience())
		}
	case combat.PlayerFled:
		err = s.ChangeActivityToDefault(p)
	case combat.PlayerDied:
		err = s.ChangeActivityTo(p, KindBeingDead)
	}
	if err != nil {
		slog.Error("ending fight", "player", p, "outcome", step.Outcome, "error", err)
	}
}

// schedule queues the next evaluation. A continuation only runs if nothing
// else was scheduled after it and the player is still in this fight.
func (f *Fighting) schedule(delay time.Duration) {
	s := f.Session()
	f.generation++
	gen := f.generation

	task := func() {
		if gen != f.generation || f.player.Activity() != game.Activity(f) {
			return
		}
		f.evaluate()
	}

	var err error
	if delay <= 0 {
		err = s.Submit(task)
	} else {
		err = s.SubmitAfter(delay, task)
	}
	if err != nil {
		slog.Warn("scheduling fight turn", "player", f.player, "error", err)
	}
}
