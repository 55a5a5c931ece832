package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-rpg/internal/display"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/rivo/tview"
)

const updateBuffer = 256

// Console plays a single character in the local terminal. It is a frontend
// like any other: callbacks arrive on the scheduler and selections go back
// through the session.
type Console struct {
	session *game.Session
	name    string
	screen  tcell.Screen

	playerID atomic.Int64
	player   *game.Player
	updates  chan func()

	app     *tview.Application
	status  *tview.TextView
	desc    *tview.TextView
	actions *tview.List
	events  *tview.TextView

	// keys holds the action key behind each list entry.
	keys []string
}

func NewConsole(s *game.Session, name string, opts ...ConsoleOpt) *Console {
	c := &Console{
		session: s,
		name:    name,
		updates: make(chan func(), updateBuffer),
		app:     tview.NewApplication(),
		status:  tview.NewTextView(),
		desc:    tview.NewTextView(),
		actions: tview.NewList(),
		events:  tview.NewTextView(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.status.SetTextColor(tcell.ColorYellow)
	c.desc.SetWordWrap(true)
	c.desc.SetBorder(true)
	c.actions.ShowSecondaryText(false)
	c.actions.SetBorder(true)
	c.actions.SetTitle(" Actions ")
	c.events.SetWordWrap(true)
	c.events.SetScrollable(true)
	c.events.SetBorder(true)
	c.events.SetTitle(" Events ")
	return c
}

func (c *Console) PlayerActivityChanged(p *game.Player) {
	if p.ID() != c.playerID.Load() {
		return
	}
	v := game.ViewOf(p)
	c.queue(func() { c.show(v) })
}

func (c *Console) PlayerReceivedEvent(p *game.Player, message string) {
	if p.ID() != c.playerID.Load() {
		return
	}
	c.queue(func() { c.log(message) })
}

func (c *Console) queue(update func()) {
	select {
	case c.updates <- update:
	default:
		slog.Warn("console is not keeping up, dropping update")
	}
}

// Start logs the character in, creating it on first use, and runs the
// terminal UI until ctx is done or the user quits.
func (c *Console) Start(ctx context.Context) error {
	v, err := c.login(ctx)
	if err != nil {
		return err
	}
	c.show(v)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.status, 1, 0, false).
		AddItem(c.desc, 0, 2, false).
		AddItem(c.actions, 0, 2, true).
		AddItem(c.events, 0, 3, false)

	c.app.SetRoot(layout, true).SetFocus(c.actions)
	c.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			c.app.Stop()
			return nil
		}
		return ev
	})
	if c.screen != nil {
		c.app.SetScreen(c.screen)
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		for {
			select {
			case <-ctx.Done():
				c.app.Stop()
				return
			case <-stopped:
				return
			case update := <-c.updates:
				c.app.QueueUpdateDraw(update)
			}
		}
	}()

	slog.InfoContext(ctx, "starting console", "player", c.player)
	if err := c.app.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

func (c *Console) login(ctx context.Context) (game.View, error) {
	var v game.View
	err := c.session.Call(ctx, func() error {
		p, err := c.session.FindPlayerByName(c.name)
		if errors.Is(err, game.ErrPlayerNotFound) {
			p, err = c.session.CreatePlayer(display.Title(c.name))
		}
		if err != nil {
			return err
		}
		c.player = p
		c.playerID.Store(p.ID())
		v = game.ViewOf(p)
		return nil
	})
	if err != nil {
		return game.View{}, fmt.Errorf("logging in %q: %w", c.name, err)
	}
	return v, nil
}

// show replaces the status, description and action list with v.
func (c *Console) show(v game.View) {
	title := v.Activity
	if v.Location != "" {
		title = display.Title(v.Location)
	}
	c.status.SetText(statusText(v))
	c.desc.SetTitle(" " + title + " ")
	c.desc.SetText(v.Description)

	c.actions.Clear()
	c.keys = c.keys[:0]
	for i, it := range listItems(v) {
		key := it.key
		c.keys = append(c.keys, key)
		c.actions.AddItem(it.label, it.group, shortcut(i), func() { c.perform(key) })
	}
}

func (c *Console) log(message string) {
	fmt.Fprintln(c.events, message)
	c.events.ScrollToEnd()
}

// perform runs the action with key for the console's player. Rejections are
// shown as a narrative line, never as an error.
func (c *Console) perform(key string) {
	p := c.player
	err := c.session.Submit(func() {
		a := p.Activity()
		if a == nil {
			return
		}
		if err := game.Perform(p, a.Base().Action(key)); errors.Is(err, game.ErrNotPermitted) {
			c.queue(func() { c.log("Nothing happens.") })
		}
	})
	if err != nil {
		slog.Warn("submitting console action", "player", p, "action", key, "error", err)
	}
}
