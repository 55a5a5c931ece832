package game

import (
	"encoding/json"
	"math"
)

// Enemy is an immutable catalog entry.
type Enemy struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Attributes  *AttributeSet `json:"attributes"`

	killExperience int
}

// NewEnemy builds an enemy outside of catalog loading.
func NewEnemy(id int64, name, description string, attrs *AttributeSet) *Enemy {
	return &Enemy{
		ID:             id,
		Name:           name,
		Description:    description,
		Attributes:     attrs.Freeze(),
		killExperience: killExperience(attrs),
	}
}

func (e *Enemy) UnmarshalJSON(b []byte) error {
	type plain Enemy
	p := plain{Attributes: &AttributeSet{}}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Enemy(p)
	e.Attributes = e.Attributes.Freeze()
	e.killExperience = killExperience(e.Attributes)
	return nil
}

func (e *Enemy) Attr(a Attribute) int {
	return e.Attributes.Get(a)
}

// KillExperience is the experience awarded for defeating the enemy.
func (e *Enemy) KillExperience() int {
	return e.killExperience
}

var killWeights = []struct {
	attr   Attribute
	weight float64
}{
	{AttrLevel, 1},
	{AttrStrength, 0.2},
	{AttrDexterity, 0.2},
	{AttrAgility, 0.2},
	{AttrLuck, 0.1},
	{AttrStamina, 0.2},
	{AttrDamage, 0.3},
	{AttrArmor, 0.3},
}

func killExperience(s *AttributeSet) int {
	var xp float64
	for _, w := range killWeights {
		xp += float64(s.Get(w.attr)) * w.weight
	}
	return int(math.Floor(xp + 0.5))
}
