package combat

import (
	"errors"
	"fmt"

	"github.com/pixil98/go-rpg/internal/game"
)

// Side identifies a participant of a fight.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*s = SidePlayer
	case "enemy":
		*s = SideEnemy
	default:
		return fmt.Errorf("unknown side %q", text)
	}
	return nil
}

// ErrNotYourTurn is returned by a step taken out of turn.
var ErrNotYourTurn = errors.New("not this side's turn")

// State is everything needed to continue a fight, including after a restart.
type State struct {
	PlayerID         int64 `json:"player"`
	EnemyID          int64 `json:"enemy"`
	PlayerHealth     int   `json:"player_health"`
	EnemyHealth      int   `json:"enemy_health"`
	PlayerInitiative int   `json:"player_initiative"`
	EnemyInitiative  int   `json:"enemy_initiative"`
	Turn             Side  `json:"turn"`
}

// Outcome says whether a fight goes on after a step.
type Outcome int

const (
	Continue Outcome = iota
	EnemyDefeated
	PlayerDied
	PlayerFled
)

// Step is the result of advancing a fight by one action.
type Step struct {
	State   State
	Events  []string
	Outcome Outcome
}

// Start rolls both initiatives and decides who acts first. The enemy starts
// at full health.
func Start(r game.Rand, playerID int64, playerHealth int, player Combatant, enemyID int64, enemy Combatant) State {
	s := State{
		PlayerID:         playerID,
		EnemyID:          enemyID,
		PlayerHealth:     playerHealth,
		EnemyHealth:      enemy.MaxHealth(),
		PlayerInitiative: Initiative(r, player, enemy),
		EnemyInitiative:  Initiative(r, enemy, player),
	}
	s.Turn = nextTurn(r, s, player, enemy)
	return s
}

// nextTurn gives the turn to the lower initiative total. Ties go to a coin
// flip weighted by luck.
func nextTurn(r game.Rand, s State, player, enemy Combatant) Side {
	switch {
	case s.PlayerInitiative < s.EnemyInitiative:
		return SidePlayer
	case s.EnemyInitiative < s.PlayerInitiative:
		return SideEnemy
	case game.ChooseFirst(r, float64(enemy.Luck()), float64(player.Luck())):
		return SideEnemy
	default:
		return SidePlayer
	}
}

// PlayerAttack resolves the player's attack on the enemy.
func PlayerAttack(r game.Rand, s State, player, enemy Combatant) (Step, error) {
	if s.Turn != SidePlayer {
		return Step{State: s}, ErrNotYourTurn
	}

	a := ResolveAttack(r, player, enemy)
	s.EnemyHealth -= a.Damage
	step := Step{Events: []string{playerAttackMessage(a)}}

	if s.EnemyHealth <= 0 {
		s.EnemyHealth = 0
		step.State = s
		step.Events = append(step.Events, defeatedMessage(enemy))
		step.Outcome = EnemyDefeated
		return step, nil
	}

	s.PlayerInitiative += Initiative(r, player, enemy)
	s.Turn = nextTurn(r, s, player, enemy)
	step.State = s
	return step, nil
}

// PlayerFlee tries to run. A failed attempt still uses up the player's turn.
func PlayerFlee(r game.Rand, s State, player, enemy Combatant) (Step, error) {
	if s.Turn != SidePlayer {
		return Step{State: s}, ErrNotYourTurn
	}

	if game.ChooseFirst(r, float64(player.Luck()), float64(enemy.Luck())) {
		return Step{State: s, Events: []string{fledMessage}, Outcome: PlayerFled}, nil
	}

	s.PlayerInitiative += Initiative(r, player, enemy)
	s.Turn = nextTurn(r, s, player, enemy)
	return Step{State: s, Events: []string{fleeFailMessage}}, nil
}

// EnemyTurn resolves the enemy's attack on the player.
func EnemyTurn(r game.Rand, s State, player, enemy Combatant) (Step, error) {
	if s.Turn != SideEnemy {
		return Step{State: s}, ErrNotYourTurn
	}

	a := ResolveAttack(r, enemy, player)
	s.PlayerHealth -= a.Damage
	step := Step{Events: []string{enemyAttackMessage(enemy, a)}}

	if s.PlayerHealth <= 0 {
		s.PlayerHealth = 0
		step.State = s
		step.Events = append(step.Events, diedMessage)
		step.Outcome = PlayerDied
		return step, nil
	}

	s.EnemyInitiative += Initiative(r, enemy, player)
	s.Turn = nextTurn(r, s, player, enemy)
	step.State = s
	return step, nil
}
