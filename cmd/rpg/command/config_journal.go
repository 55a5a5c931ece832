package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-rpg/internal/journal"
)

// JournalConfig turns on the event journal when Path is set.
type JournalConfig struct {
	Path string `json:"path,omitempty" env:"RPG_JOURNAL_PATH"`
}

func (c *JournalConfig) validate() error {
	if c.Path == "" {
		return nil
	}
	if fi, err := os.Stat(c.Path); err == nil && !fi.IsDir() {
		return fmt.Errorf("journal path %q is not a directory", c.Path)
	}
	return nil
}

func (c *JournalConfig) buildJournal() *journal.Journal {
	if c.Path == "" {
		return nil
	}
	return journal.NewJournal(c.Path)
}
