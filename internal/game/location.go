package game

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Encounter is one row of a location's encounter table.
type Encounter struct {
	EnemyID int64
	Rarity  float64
}

// Location is an immutable catalog entry.
type Location struct {
	ID          int64
	Name        string
	Description string
	// Directions maps a direction name to the destination location id.
	Directions map[string]int64
	Graveyard  int64
	Encounters []Encounter
}

type locationJSON struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Directions  map[string]int64   `json:"directions,omitempty"`
	Graveyard   *int64             `json:"graveyard,omitempty"`
	Enemies     map[string]float64 `json:"enemies,omitempty"`
}

func (l *Location) UnmarshalJSON(b []byte) error {
	var raw locationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	loc := Location{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Directions:  raw.Directions,
		Graveyard:   raw.ID,
	}
	if raw.Graveyard != nil {
		loc.Graveyard = *raw.Graveyard
	}
	for k, w := range raw.Enemies {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return fmt.Errorf("location %d: enemy id %q: %w", raw.ID, k, err)
		}
		loc.Encounters = append(loc.Encounters, Encounter{EnemyID: id, Rarity: w})
	}
	slices.SortFunc(loc.Encounters, func(a, b Encounter) int {
		return cmp.Compare(a.EnemyID, b.EnemyID)
	})

	*l = loc
	return nil
}

func (l *Location) MarshalJSON() ([]byte, error) {
	raw := locationJSON{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Directions:  l.Directions,
	}
	if l.Graveyard != l.ID {
		g := l.Graveyard
		raw.Graveyard = &g
	}
	if len(l.Encounters) > 0 {
		raw.Enemies = make(map[string]float64, len(l.Encounters))
		for _, e := range l.Encounters {
			raw.Enemies[strconv.FormatInt(e.EnemyID, 10)] = e.Rarity
		}
	}
	return json.Marshal(raw)
}

// DirectionNames returns the direction names in a stable order.
func (l *Location) DirectionNames() []string {
	names := make([]string, 0, len(l.Directions))
	for n := range l.Directions {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// HasEnemies reports whether any encounter can ever be drawn here.
func (l *Location) HasEnemies() bool {
	for _, e := range l.Encounters {
		if e.Rarity > 0 {
			return true
		}
	}
	return false
}

// Ambush rolls the on-entry check. Only rarities above one take part, each
// succeeding with probability rarity-1 in shuffled order.
func (l *Location) Ambush(r Rand) (int64, bool) {
	if !l.HasEnemies() {
		return 0, false
	}
	for _, e := range Shuffled(r, l.Encounters) {
		if e.Rarity <= 1 {
			continue
		}
		if Check(r, e.Rarity-1) {
			return e.EnemyID, true
		}
	}
	return 0, false
}

// SeekEncounter draws an enemy for a deliberate search. Rarities above one
// are reduced by one, the rest are used as they are.
func (l *Location) SeekEncounter(r Rand) (int64, bool) {
	if !l.HasEnemies() {
		return 0, false
	}

	order := Shuffled(r, l.Encounters)
	var total float64
	for _, e := range order {
		total += seekWeight(e.Rarity)
	}
	if total <= 0 {
		return 0, false
	}

	remaining := r.Float64() * total
	var last int64
	found := false
	for _, e := range order {
		w := seekWeight(e.Rarity)
		if w <= 0 {
			continue
		}
		last, found = e.EnemyID, true
		remaining -= w
		if remaining <= 0 {
			return e.EnemyID, true
		}
	}
	// float rounding can leave a sliver; the last eligible entry takes it
	return last, found
}

func seekWeight(rarity float64) float64 {
	if rarity > 1 {
		return rarity - 1
	}
	if rarity < 0 {
		return 0
	}
	return rarity
}
