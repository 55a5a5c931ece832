package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/driver"
)

type LoopConfig struct {
	TickInterval     string `json:"tick_interval"`
	DrainTimeout     string `json:"drain_timeout"`
	AutosaveInterval string `json:"autosave_interval" env:"RPG_AUTOSAVE_INTERVAL"`
}

func (c *LoopConfig) validate() error {
	el := errors.NewErrorList()

	if d, err := parseOptionalDuration(c.TickInterval); err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if c.TickInterval != "" && d < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	}
	if d, err := parseOptionalDuration(c.DrainTimeout); err != nil {
		el.Add(fmt.Errorf("parsing drain_timeout: %w", err))
	} else if d < 0 {
		el.Add(fmt.Errorf("drain_timeout must not be negative"))
	}
	if d, err := parseOptionalDuration(c.AutosaveInterval); err != nil {
		el.Add(fmt.Errorf("parsing autosave_interval: %w", err))
	} else if d < 0 {
		el.Add(fmt.Errorf("autosave_interval must not be negative"))
	}

	return el.Err()
}

func (c *LoopConfig) buildEventLoop() (*driver.EventLoop, error) {
	var opts []driver.EventLoopOpt

	tick, err := parseOptionalDuration(c.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	if tick > 0 {
		opts = append(opts, driver.WithTickLength(tick))
	}

	drain, err := parseOptionalDuration(c.DrainTimeout)
	if err != nil {
		return nil, fmt.Errorf("parsing drain_timeout: %w", err)
	}
	if drain > 0 {
		opts = append(opts, driver.WithDrainTimeout(drain))
	}

	return driver.NewEventLoop(opts...), nil
}

// autosaveInterval is zero when autosaving is off.
func (c *LoopConfig) autosaveInterval() (time.Duration, error) {
	return parseOptionalDuration(c.AutosaveInterval)
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
