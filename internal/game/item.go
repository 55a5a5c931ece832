package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValueCantSell marks an item that no merchant will take.
const ValueCantSell = -1

type ItemType int

const (
	ItemWeapon ItemType = iota
	ItemArmorHead
	ItemArmorChest
	ItemArmorLegs
	ItemArmorRing
	ItemShield
	ItemJunk
)

var itemTypeNames = map[ItemType]string{
	ItemWeapon:     "weapon",
	ItemArmorHead:  "armor_head",
	ItemArmorChest: "armor_chest",
	ItemArmorLegs:  "armor_legs",
	ItemArmorRing:  "armor_ring",
	ItemShield:     "shield",
	ItemJunk:       "junk",
}

func (t ItemType) String() string {
	if n, ok := itemTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

// Equippable reports whether items of this type occupy an equipment slot.
func (t ItemType) Equippable() bool {
	return t != ItemJunk
}

func (t ItemType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ItemType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for k, v := range itemTypeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown item type: %s", text)
}

// Item is an immutable catalog entry.
type Item struct {
	ID         int64         `json:"id"`
	Type       ItemType      `json:"type"`
	Name       string        `json:"name"`
	Lore       string        `json:"lore,omitempty"`
	Value      int           `json:"value"`
	Attributes *AttributeSet `json:"attributes"`
}

func (i *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	p := plain{Attributes: &AttributeSet{}}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*i = Item(p)
	i.Attributes = i.Attributes.Freeze()
	return nil
}

func (i *Item) Sellable() bool {
	return i.Value != ValueCantSell
}
