package game

import "math"

// AttributeHolder is anything that exposes clamped attribute values.
type AttributeHolder interface {
	Attr(a Attribute) int
}

// MaxHealth is five health per point of stamina.
func MaxHealth(h AttributeHolder) int {
	return h.Attr(AttrStamina) * 5
}

// SoloLuckCheck succeeds with probability luck*0.005.
func SoloLuckCheck(r Rand, h AttributeHolder) bool {
	return Check(r, float64(h.Attr(AttrLuck))*0.005)
}

// OpposedLuckCheck succeeds with probability luck*0.006*(1-opponentLuck*0.008).
func OpposedLuckCheck(r Rand, h AttributeHolder, opponentLuck int) bool {
	base := float64(h.Attr(AttrLuck)) * 0.006
	scale := float64(opponentLuck) * 0.008
	return Check(r, base*(1-scale))
}

// XPToNextLevel is the experience needed to leave the given level.
func XPToNextLevel(level int) int {
	l := float64(level)
	return int(math.Ceil(math.Log10(l+200)*math.Pow(l, 0.7)*1.2 + 10))
}
