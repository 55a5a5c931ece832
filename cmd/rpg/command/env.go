package command

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays RPG_* environment variables onto target. Fields whose
// variable is unset keep the value from the config file.
func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
