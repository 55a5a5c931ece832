package game

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Rules are the tunable numbers of the game.
type Rules struct {
	StartingLocation   int64          `yaml:"starting_location"`
	StartingItem       int64          `yaml:"starting_item"`
	StartingAttributes map[string]int `yaml:"starting_attributes"`

	// EnemyTurnDelay paces combat between enemy turns.
	EnemyTurnDelay time.Duration `yaml:"enemy_turn_delay"`
	// Eternity is how long a dead player waits before being freed.
	Eternity             time.Duration `yaml:"eternity"`
	VirtuePointsPerLevel int           `yaml:"virtue_points_per_level"`
}

func DefaultRules() Rules {
	return Rules{
		StartingLocation: 0,
		StartingItem:     1,
		StartingAttributes: map[string]int{
			"LVL":  1,
			"STR":  5,
			"DEX":  5,
			"AGI":  5,
			"LUCK": 5,
			"STA":  5,
		},
		EnemyTurnDelay:       time.Second,
		Eternity:             time.Minute,
		VirtuePointsPerLevel: 2,
	}
}

// LoadRules overlays the YAML file at path onto DefaultRules.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules: %w", err)
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("validating rules: %w", err)
	}
	return r, nil
}

func (r Rules) Validate() error {
	el := errors.NewErrorList()

	if _, err := r.startingAttributes(); err != nil {
		el.Add(err)
	}
	if r.EnemyTurnDelay < 0 {
		el.Add(fmt.Errorf("enemy_turn_delay must not be negative"))
	}
	if r.Eternity < 0 {
		el.Add(fmt.Errorf("eternity must not be negative"))
	}
	if r.VirtuePointsPerLevel < 0 {
		el.Add(fmt.Errorf("virtue_points_per_level must not be negative"))
	}

	return el.Err()
}

// CheckCatalog verifies the starting references exist in c.
func (r Rules) CheckCatalog(c *Catalog) error {
	el := errors.NewErrorList()
	if _, ok := c.Location(r.StartingLocation); !ok {
		el.Add(fmt.Errorf("starting location %d not in catalog", r.StartingLocation))
	}
	if it, ok := c.Item(r.StartingItem); !ok {
		el.Add(fmt.Errorf("starting item %d not in catalog", r.StartingItem))
	} else if !it.Type.Equippable() {
		el.Add(fmt.Errorf("starting item %d: %w", r.StartingItem, ErrNotEquippable))
	}
	return el.Err()
}

func (r Rules) startingAttributes() (*AttributeSet, error) {
	s := NewAttributeSet()
	for k, v := range r.StartingAttributes {
		a, err := ParseAttribute(k)
		if err != nil {
			return nil, fmt.Errorf("starting_attributes: %w", err)
		}
		s.Set(a, v)
	}
	return s, nil
}
