package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pixil98/go-rpg/internal/display"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-rpg/internal/messaging"
)

const DefaultGreeting = "Welcome to GoRPG!"

// PlayerManager runs the text sessions of connected players. Every read or
// change of game state goes through the session's scheduler; player output
// arrives over the message bus.
type PlayerManager struct {
	session  *game.Session
	bus      messaging.Subscriber
	greeting string
	width    int

	mu     sync.Mutex
	online map[int64]bool
}

func NewPlayerManager(s *game.Session, bus messaging.Subscriber, opts ...PlayerManagerOpt) *PlayerManager {
	m := &PlayerManager{
		session:  s,
		bus:      bus,
		greeting: DefaultGreeting,
		width:    display.DefaultWidth,
		online:   map[int64]bool{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *PlayerManager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// RunSession logs a player in on rw and plays until they quit, the
// connection drops or ctx is done.
func (m *PlayerManager) RunSession(ctx context.Context, rw io.ReadWriter) error {
	conn := newLineConn(rw)
	if _, err := fmt.Fprintf(conn, "%s\n", m.greeting); err != nil {
		return err
	}

	p, err := m.login(ctx, conn)
	if err != nil {
		return err
	}
	defer m.release(p.ID())

	slog.InfoContext(ctx, "player connected", "player", p)
	defer slog.InfoContext(ctx, "player disconnected", "player", p)

	c := &connection{
		conn:    conn,
		session: m.session,
		bus:     m.bus,
		player:  p,
		width:   m.width,
	}
	return c.play(ctx)
}

func (m *PlayerManager) login(ctx context.Context, conn *lineConn) (*game.Player, error) {
	// a name offered by the transport is tried once before prompting
	offered := loginName(ctx)
	if ok, _ := validName(offered); !ok {
		offered = ""
	}

	for {
		name := offered
		offered = ""
		if name == "" {
			var err error
			name, err = Prompt(conn, "By what name do you wish to be known? ", WithValidator(validName))
			if err != nil {
				return nil, err
			}
		}

		p, err := m.find(ctx, name)
		if err != nil {
			return nil, err
		}

		if p == nil {
			ok, err := PromptYN(conn, fmt.Sprintf("Did I get that right, %s (Y/N)? ", display.Title(name)))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			p, err = m.create(ctx, name)
			if errors.Is(err, game.ErrNameTaken) || errors.Is(err, game.ErrInvalidName) {
				io.WriteString(conn, "That name cannot be used, please try another.\n")
				continue
			}
			if err != nil {
				return nil, err
			}
		} else {
			fmt.Fprintf(conn, "Welcome back, %s!\n", p.Name())
		}

		if !m.claim(p.ID()) {
			fmt.Fprintf(conn, "%s is already playing.\n", p.Name())
			continue
		}
		return p, nil
	}
}

func validName(str string) (bool, string) {
	if !game.ValidName(str) {
		return false, "Invalid name, please try another.\n"
	}
	return true, ""
}

func (m *PlayerManager) find(ctx context.Context, name string) (*game.Player, error) {
	var p *game.Player
	err := m.session.Call(ctx, func() error {
		found, err := m.session.FindPlayerByName(name)
		if errors.Is(err, game.ErrPlayerNotFound) {
			return nil
		}
		p = found
		return err
	})
	return p, err
}

func (m *PlayerManager) create(ctx context.Context, name string) (*game.Player, error) {
	var p *game.Player
	err := m.session.Call(ctx, func() error {
		var err error
		p, err = m.session.CreatePlayer(display.Title(name))
		return err
	})
	return p, err
}

// claim marks id as connected. A player can only be connected once.
func (m *PlayerManager) claim(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online[id] {
		return false
	}
	m.online[id] = true
	return true
}

func (m *PlayerManager) release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.online, id)
}
