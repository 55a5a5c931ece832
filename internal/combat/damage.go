package combat

import (
	"math"

	"github.com/pixil98/go-rpg/internal/game"
)

// Attack is the outcome of one attack roll.
type Attack struct {
	Hit      bool
	Critical bool
	Damage   int
}

// ResolveAttack rolls attacker against defender. The hit roll weighs
// DEX+DEX/3 against the defender's DEX; an opposed luck check then upgrades
// a hit to a critical or saves a miss as a plain hit.
func ResolveAttack(r game.Rand, attacker, defender game.AttributeHolder) Attack {
	dex := attacker.Attr(game.AttrDexterity)
	hit := game.ChooseFirst(r, float64(dex+dex/3), float64(defender.Attr(game.AttrDexterity)))
	lucky := game.OpposedLuckCheck(r, attacker, defender.Attr(game.AttrLuck))

	var a Attack
	switch {
	case hit && lucky:
		a.Hit, a.Critical = true, true
	case hit || lucky:
		a.Hit = true
	default:
		return a
	}

	dmg := roundHalfUp(WeaponDamage(r, attacker) * StrengthModifier(attacker))
	if a.Critical {
		dmg = roundHalfUp(float64(dmg) * 2)
	}
	a.Damage = dmg
	return a
}

// WeaponDamage draws max(1, DMG + clamp(N/1.5, -1, 1) * DMG RANGE) where N
// is a standard normal sample.
func WeaponDamage(r game.Rand, h game.AttributeHolder) float64 {
	spread := max(-1, min(1, r.NormFloat64()/1.5))
	base := float64(h.Attr(game.AttrDamage)) + spread*float64(h.Attr(game.AttrDamageSpread))
	return max(1, base)
}

// StrengthModifier is log10(STR+1) + 1.
func StrengthModifier(h game.AttributeHolder) float64 {
	return math.Log10(float64(h.Attr(game.AttrStrength))+1) + 1
}

// Initiative is AGI, plus a quarter more when an opposed luck check against
// the opponent succeeds.
func Initiative(r game.Rand, self, opponent game.AttributeHolder) int {
	agi := self.Attr(game.AttrAgility)
	if game.OpposedLuckCheck(r, self, opponent.Attr(game.AttrLuck)) {
		agi += agi / 4
	}
	return agi
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
