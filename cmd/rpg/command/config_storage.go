package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-rpg/internal/storage"
)

type StorageConfig struct {
	// WorldPath holds locations.json, items.json and enemies.json.
	WorldPath string `json:"world_path" env:"RPG_WORLD_PATH"`
	// StatePath holds players.json and activities.json.
	StatePath string `json:"state_path" env:"RPG_STATE_PATH"`
	IndexPath string `json:"index_path,omitempty" env:"RPG_INDEX_PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.WorldPath == "" {
		el.Add(fmt.Errorf("world_path is required"))
	} else if _, err := os.Stat(c.WorldPath); err != nil {
		el.Add(fmt.Errorf("world_path: invalid path %q: %w", c.WorldPath, err))
	}
	if c.StatePath == "" {
		el.Add(fmt.Errorf("state_path is required"))
	}

	return el.Err()
}

func (c *StorageConfig) loadCatalog() (*game.Catalog, error) {
	catalog, err := game.LoadCatalog(c.WorldPath)
	if err != nil {
		return nil, fmt.Errorf("loading world from %q: %w", c.WorldPath, err)
	}
	return catalog, nil
}

// buildPersister returns the persister for the state path. The save index is
// nil unless index_path is set; the caller closes it.
func (c *StorageConfig) buildPersister() (*game.Persister, *storage.SaveIndex, error) {
	var (
		opts  []storage.WriterOpt
		index *storage.SaveIndex
	)
	if c.IndexPath != "" {
		idx, err := storage.OpenSaveIndex(c.IndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening save index: %w", err)
		}
		index = idx
		opts = append(opts, storage.WithIndex(idx))
	}

	return game.NewPersister(c.StatePath, storage.NewWriter(opts...)), index, nil
}
