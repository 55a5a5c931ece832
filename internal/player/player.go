package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-rpg/internal/messaging"
)

const messageBuffer = 64

// connection is one logged in player on one terminal.
type connection struct {
	conn    *lineConn
	session *game.Session
	bus     messaging.Subscriber
	player  *game.Player
	width   int

	// view is the last view shown; numbers typed by the player refer to keys.
	view game.View
	keys []string
}

func (c *connection) play(ctx context.Context) error {
	msgs := make(chan messaging.Envelope, messageBuffer)
	unsubscribe, err := c.bus.Subscribe(messaging.PlayerSubject(c.player.ID()), func(data []byte) {
		var env messaging.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("decoding player message", "player", c.player, "error", err)
			return
		}
		select {
		case msgs <- env:
		default:
			slog.Warn("player is not keeping up, dropping message", "player", c.player)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to player messages: %w", err)
	}
	defer unsubscribe()

	// Start goroutine to read input lines into a channel
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		for {
			line, err := c.conn.ReadLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					inputErrChan <- err
				}
				return
			}
			select {
			case inputChan <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := c.refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.writeLine("\nThe world fades away.")
			return ctx.Err()

		case env := <-msgs:
			switch env.Type {
			case messaging.EnvelopeView:
				if env.View == nil {
					continue
				}
				err = c.show(*env.View)
			case messaging.EnvelopeEvent:
				err = c.writeLine("\n" + env.Message)
			}
			if err == nil {
				err = c.prompt()
			}
			if err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Input channel closed (connection lost).
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			quit, err := c.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				c.writeLine("Goodbye!")
				return nil
			}
			if err := c.prompt(); err != nil {
				return err
			}
		}
	}
}

// handle runs one line of input. It reports whether the player wants to
// leave.
func (c *connection) handle(ctx context.Context, line string) (bool, error) {
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "quit", "q":
		return true, nil
	case "look", "l":
		return false, c.refresh(ctx)
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(c.keys) {
		return false, c.writeLine("Invalid selection!")
	}

	key := c.keys[n-1]
	err = c.session.Call(ctx, func() error {
		a := c.player.Activity()
		if a == nil {
			return game.ErrNotPermitted
		}
		return game.Perform(c.player, a.Base().Action(key))
	})
	if errors.Is(err, game.ErrNotPermitted) {
		return false, c.writeLine("Nothing happens.")
	}
	return false, err
}

// refresh fetches and shows the player's current view.
func (c *connection) refresh(ctx context.Context) error {
	var v game.View
	err := c.session.Call(ctx, func() error {
		v = game.ViewOf(c.player)
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetching view: %w", err)
	}
	if err := c.show(v); err != nil {
		return err
	}
	return c.prompt()
}

func (c *connection) show(v game.View) error {
	text, keys := renderView(v, c.width)
	c.view, c.keys = v, keys
	return c.writeLine("\n" + text)
}

func (c *connection) prompt() error {
	_, err := io.WriteString(c.conn, promptFor(c.view))
	return err
}

func (c *connection) writeLine(msg string) error {
	_, err := io.WriteString(c.conn, msg+"\n")
	return err
}
