package combat

import "github.com/pixil98/go-rpg/internal/game"

// Combatant is one side of a fight: a display name over anything that
// exposes attributes. Both *game.Player and *game.Enemy qualify.
type Combatant struct {
	Name string
	game.AttributeHolder
}

func PlayerCombatant(p *game.Player) Combatant {
	return Combatant{Name: p.Name(), AttributeHolder: p}
}

func EnemyCombatant(e *game.Enemy) Combatant {
	return Combatant{Name: e.Name, AttributeHolder: e}
}

func (c Combatant) MaxHealth() int { return game.MaxHealth(c) }
func (c Combatant) Luck() int      { return c.Attr(game.AttrLuck) }
