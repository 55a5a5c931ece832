package console

import "github.com/gdamore/tcell/v2"

type ConsoleOpt func(*Console)

// WithScreen runs the console on s instead of the process terminal.
func WithScreen(s tcell.Screen) ConsoleOpt {
	return func(c *Console) {
		c.screen = s
	}
}
