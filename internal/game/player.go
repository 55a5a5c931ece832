package game

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-rpg/internal/storage"
)

// Player is a character known to the session. Location and activity are
// only changed through the Session.
type Player struct {
	id   int64
	name string

	// Attributes are the base attributes before equipment bonuses.
	Attributes   *AttributeSet
	Experience   int
	VirtuePoints int

	// ActivityState holds per-player payloads written by activities.
	ActivityState storage.Payload

	health    int
	equipment map[ItemType]*Item
	inventory []*Item

	location *Location
	activity Activity
}

func newPlayer(id int64, name string, attrs *AttributeSet) *Player {
	return &Player{
		id:         id,
		name:       name,
		Attributes: attrs.Combine(),
		equipment:  map[ItemType]*Item{},
	}
}

func (p *Player) ID() int64            { return p.id }
func (p *Player) Name() string         { return p.name }
func (p *Player) Location() *Location  { return p.location }
func (p *Player) Activity() Activity   { return p.activity }
func (p *Player) Health() int          { return p.health }
func (p *Player) String() string       { return fmt.Sprintf("%s#%d", p.name, p.id) }
func (p *Player) Level() int           { return p.Attr(AttrLevel) }
func (p *Player) MaxHealth() int       { return MaxHealth(p) }
func (p *Player) XPToNextLevel() int   { return XPToNextLevel(p.Level()) }
func (p *Player) Inventory() []*Item   { return slices.Clone(p.inventory) }
func (p *Player) IsAlive() bool        { return p.health > 0 }
func (p *Player) Effective() *AttributeSet {
	s := p.Attributes.Combine()
	for _, it := range p.equipment {
		s.And(it.Attributes)
	}
	return s
}

// Attr returns the base attribute plus every equipped bonus.
func (p *Player) Attr(a Attribute) int {
	return p.Effective().Get(a)
}

// SetHealth stores h, capped at the player's max health.
func (p *Player) SetHealth(h int) {
	p.health = min(h, p.MaxHealth())
}

// Equipment returns the equipped items ordered by slot.
func (p *Player) Equipment() []*Item {
	items := make([]*Item, 0, len(p.equipment))
	for _, it := range p.equipment {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b *Item) int { return int(a.Type) - int(b.Type) })
	return items
}

func (p *Player) Equipped(slot ItemType) (*Item, bool) {
	it, ok := p.equipment[slot]
	return it, ok
}

// Equip puts item into its slot. The item leaves the inventory if it was
// there and whatever occupied the slot goes back into it.
func (p *Player) Equip(item *Item) error {
	if !item.Type.Equippable() {
		return fmt.Errorf("%s: %w", item.Name, ErrNotEquippable)
	}
	if i := slices.Index(p.inventory, item); i >= 0 {
		p.inventory = slices.Delete(p.inventory, i, i+1)
	}
	if prev, ok := p.equipment[item.Type]; ok {
		p.inventory = append(p.inventory, prev)
	}
	p.equipment[item.Type] = item
	return nil
}

// Unequip moves the item in slot back into the inventory.
func (p *Player) Unequip(slot ItemType) bool {
	it, ok := p.equipment[slot]
	if !ok {
		return false
	}
	delete(p.equipment, slot)
	p.inventory = append(p.inventory, it)
	return true
}

func (p *Player) AddToInventory(item *Item) {
	p.inventory = append(p.inventory, item)
}
