package game

import (
	"encoding/json"
	"fmt"
	"math"
)

// Attribute is one slot of an AttributeSet.
type Attribute int

const (
	AttrLevel Attribute = iota
	AttrStrength
	AttrDexterity
	AttrAgility
	AttrLuck
	AttrStamina
	AttrDamage
	AttrDamageSpread
	AttrArmor

	attributeCount
)

// AttributeKind groups attributes by what they describe.
type AttributeKind int

const (
	KindVirtue AttributeKind = iota
	KindWeapon
	KindArmor
	KindCharacter
)

type attributeInfo struct {
	short    string
	kind     AttributeKind
	min, max int
}

var attributeTable = [attributeCount]attributeInfo{
	AttrLevel:        {"LVL", KindCharacter, 1, math.MaxInt32},
	AttrStrength:     {"STR", KindVirtue, 0, math.MaxInt32},
	AttrDexterity:    {"DEX", KindVirtue, math.MinInt32, math.MaxInt32},
	AttrAgility:      {"AGI", KindVirtue, math.MinInt32, math.MaxInt32},
	AttrLuck:         {"LUCK", KindVirtue, 0, 100},
	AttrStamina:      {"STA", KindVirtue, math.MinInt32, math.MaxInt32},
	AttrDamage:       {"DMG", KindWeapon, math.MinInt32, math.MaxInt32},
	AttrDamageSpread: {"DMG RANGE", KindWeapon, math.MinInt32, math.MaxInt32},
	AttrArmor:        {"ARMOR", KindArmor, math.MinInt32, math.MaxInt32},
}

// Attributes returns every attribute in declaration order.
func Attributes() []Attribute {
	all := make([]Attribute, attributeCount)
	for i := range all {
		all[i] = Attribute(i)
	}
	return all
}

// ParseAttribute resolves a short name such as "STR".
func ParseAttribute(short string) (Attribute, error) {
	for i, info := range attributeTable {
		if info.short == short {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute %q", short)
}

func (a Attribute) String() string {
	if a < 0 || a >= attributeCount {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeTable[a].short
}

func (a Attribute) Kind() AttributeKind { return attributeTable[a].kind }
func (a Attribute) Min() int            { return attributeTable[a].min }
func (a Attribute) Max() int            { return attributeTable[a].max }

// Clamp limits v to the attribute's declared range.
func (a Attribute) Clamp(v int) int {
	return min(max(v, a.Min()), a.Max())
}

// AttributeSet is a fixed vector of attribute values. Sets decoded from
// catalogs are immutable; sets built with NewAttributeSet or Combine are not.
type AttributeSet struct {
	values  [attributeCount]int
	mutable bool
}

func NewAttributeSet() *AttributeSet {
	return &AttributeSet{mutable: true}
}

// Get returns the value clamped to the attribute's range.
func (s *AttributeSet) Get(a Attribute) int {
	if s == nil {
		return a.Clamp(0)
	}
	return a.Clamp(s.values[a])
}

// Raw returns the stored value without clamping.
func (s *AttributeSet) Raw(a Attribute) int {
	if s == nil {
		return 0
	}
	return s.values[a]
}

func (s *AttributeSet) Mutable() bool { return s != nil && s.mutable }

func (s *AttributeSet) Set(a Attribute, v int) {
	s.mustBeMutable()
	s.values[a] = v
}

// Add adds delta to a and returns the new raw value.
func (s *AttributeSet) Add(a Attribute, delta int) int {
	s.mustBeMutable()
	s.values[a] += delta
	return s.values[a]
}

// Combine returns a mutable copy of s.
func (s *AttributeSet) Combine() *AttributeSet {
	c := NewAttributeSet()
	if s != nil {
		c.values = s.values
	}
	return c
}

// And adds other into s element-wise and returns s.
func (s *AttributeSet) And(other *AttributeSet) *AttributeSet {
	s.mustBeMutable()
	if other == nil {
		return s
	}
	for i := range s.values {
		s.values[i] += other.values[i]
	}
	return s
}

// Freeze returns an immutable copy of s.
func (s *AttributeSet) Freeze() *AttributeSet {
	c := s.Combine()
	c.mutable = false
	return c
}

func (s *AttributeSet) mustBeMutable() {
	if s == nil || !s.mutable {
		panic("game: mutating an immutable attribute set")
	}
}

// MarshalJSON writes non-zero values keyed by short name.
func (s *AttributeSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, attributeCount)
	for i, v := range s.values {
		if v != 0 {
			m[attributeTable[i].short] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads values keyed by short name. Absent keys are zero.
// The mutability of the receiver is left as it was.
func (s *AttributeSet) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var values [attributeCount]int
	for k, v := range m {
		a, err := ParseAttribute(k)
		if err != nil {
			return err
		}
		values[a] = v
	}
	s.values = values
	return nil
}
