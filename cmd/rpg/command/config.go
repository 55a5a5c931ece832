package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/game"
)

type Config struct {
	Listeners     []ListenerConfig    `json:"listeners"`
	Nats          NatsConfig          `json:"nats"`
	Storage       StorageConfig       `json:"storage"`
	RulesPath     string              `json:"rules_path" env:"RPG_RULES_PATH"`
	Loop          LoopConfig          `json:"loop"`
	Journal       JournalConfig       `json:"journal"`
	Console       ConsoleConfig       `json:"console"`
	PlayerManager PlayerManagerConfig `json:"player_manager"`
}

// Validate applies environment overrides and then checks every section.
func (c *Config) Validate() error {
	if err := parseEnv(c); err != nil {
		return err
	}

	el := errors.NewErrorList()

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Loop.validate())
	el.Add(c.Journal.validate())
	el.Add(c.Console.validate())
	el.Add(c.PlayerManager.validate())

	if c.RulesPath != "" {
		if _, err := game.LoadRules(c.RulesPath); err != nil {
			el.Add(fmt.Errorf("rules_path: %w", err))
		}
	}

	return el.Err()
}

func (c *Config) loadRules() (game.Rules, error) {
	if c.RulesPath == "" {
		return game.DefaultRules(), nil
	}
	return game.LoadRules(c.RulesPath)
}
