package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/console"
	"github.com/pixil98/go-rpg/internal/game"
)

// ConsoleConfig plays one character in the terminal the server runs in.
type ConsoleConfig struct {
	Enabled bool   `json:"enabled" env:"RPG_CONSOLE"`
	Player  string `json:"player,omitempty" env:"RPG_CONSOLE_PLAYER"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.Enabled {
		if c.Player == "" {
			el.Add(fmt.Errorf("console: player is required when enabled"))
		} else if !game.ValidName(c.Player) {
			el.Add(fmt.Errorf("console: player %q is not a valid name", c.Player))
		}
	}

	return el.Err()
}

func (c *ConsoleConfig) buildConsole(s *game.Session) *console.Console {
	if !c.Enabled {
		return nil
	}
	return console.NewConsole(s, c.Player)
}
