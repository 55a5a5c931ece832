package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-rpg/internal/messaging"
	"github.com/pixil98/go-rpg/internal/player"
)

type PlayerManagerConfig struct {
	Greeting string `json:"greeting,omitempty"`
	Width    int    `json:"width,omitempty"`

	// MaxConnections caps concurrent terminal connections. Zero means no cap.
	MaxConnections int `json:"max_connections,omitempty" env:"RPG_MAX_CONNECTIONS"`
}

func (c *PlayerManagerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 {
		el.Add(fmt.Errorf("player_manager: width must not be negative"))
	}
	if c.MaxConnections < 0 {
		el.Add(fmt.Errorf("player_manager: max_connections must not be negative"))
	}

	return el.Err()
}

func (c *PlayerManagerConfig) buildPlayerManager(s *game.Session, bus messaging.Subscriber) *player.PlayerManager {
	var opts []player.PlayerManagerOpt
	if c.Greeting != "" {
		opts = append(opts, player.WithGreeting(c.Greeting))
	}
	if c.Width > 0 {
		opts = append(opts, player.WithWidth(c.Width))
	}
	return player.NewPlayerManager(s, bus, opts...)
}
