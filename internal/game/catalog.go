package game

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/storage"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	LocationsFile = "locations.json"
	ItemsFile     = "items.json"
	EnemiesFile   = "enemies.json"
)

// Catalog is the read-only world content, keyed by id.
type Catalog struct {
	Locations map[int64]*Location
	Items     map[int64]*Item
	Enemies   map[int64]*Enemy
}

// LoadCatalog reads the three catalog documents from dir.
func LoadCatalog(dir string) (*Catalog, error) {
	var (
		locations []*Location
		items     []*Item
		enemies   []*Enemy
	)

	for _, doc := range []struct {
		file string
		out  any
	}{
		{LocationsFile, &locations},
		{ItemsFile, &items},
		{EnemiesFile, &enemies},
	} {
		schemaName := "schemas/" + strings.TrimSuffix(doc.file, ".json") + ".schema.json"
		raw, err := schemaFS.ReadFile(schemaName)
		if err != nil {
			return nil, fmt.Errorf("reading schema for %s: %w", doc.file, err)
		}
		schema, err := storage.CompileSchema(filepath.Base(schemaName), raw)
		if err != nil {
			return nil, err
		}
		if err := storage.LoadValidated(filepath.Join(dir, doc.file), schema, doc.out); err != nil {
			return nil, err
		}
	}

	return NewCatalog(locations, items, enemies)
}

// NewCatalog indexes the entries and checks every cross reference.
func NewCatalog(locations []*Location, items []*Item, enemies []*Enemy) (*Catalog, error) {
	el := errors.NewErrorList()
	c := &Catalog{
		Locations: make(map[int64]*Location, len(locations)),
		Items:     make(map[int64]*Item, len(items)),
		Enemies:   make(map[int64]*Enemy, len(enemies)),
	}

	for _, l := range locations {
		if _, ok := c.Locations[l.ID]; ok {
			el.Add(fmt.Errorf("duplicate location id %d", l.ID))
			continue
		}
		c.Locations[l.ID] = l
	}
	for _, i := range items {
		if _, ok := c.Items[i.ID]; ok {
			el.Add(fmt.Errorf("duplicate item id %d", i.ID))
			continue
		}
		c.Items[i.ID] = i
	}
	for _, e := range enemies {
		if _, ok := c.Enemies[e.ID]; ok {
			el.Add(fmt.Errorf("duplicate enemy id %d", e.ID))
			continue
		}
		c.Enemies[e.ID] = e
	}

	for _, l := range locations {
		for dir, to := range l.Directions {
			if _, ok := c.Locations[to]; !ok {
				el.Add(fmt.Errorf("location %d: direction %q leads to unknown location %d", l.ID, dir, to))
			}
		}
		if _, ok := c.Locations[l.Graveyard]; !ok {
			el.Add(fmt.Errorf("location %d: unknown graveyard %d", l.ID, l.Graveyard))
		}
		for _, enc := range l.Encounters {
			if _, ok := c.Enemies[enc.EnemyID]; !ok {
				el.Add(fmt.Errorf("location %d: unknown enemy %d", l.ID, enc.EnemyID))
			}
		}
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Location(id int64) (*Location, bool) {
	l, ok := c.Locations[id]
	return l, ok
}

func (c *Catalog) Item(id int64) (*Item, bool) {
	i, ok := c.Items[id]
	return i, ok
}

func (c *Catalog) Enemy(id int64) (*Enemy, bool) {
	e, ok := c.Enemies[id]
	return e, ok
}
