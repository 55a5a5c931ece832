package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-rpg/internal/game"
)

const (
	EnvelopeView  = "view"
	EnvelopeEvent = "event"
)

// Envelope is what a player's subject carries: either a fresh view of their
// activity or a single narrative message.
type Envelope struct {
	Type    string     `json:"type"`
	View    *game.View `json:"view,omitempty"`
	Message string     `json:"message,omitempty"`
}

// PlayerSubject is the subject a player's messages are published on.
func PlayerSubject(id int64) string {
	return fmt.Sprintf("player-%d", id)
}

type Publisher interface {
	Publish(subject string, data []byte) error
}

type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// NatsFrontend publishes every player notification to the player's subject.
type NatsFrontend struct {
	pub Publisher
}

func NewNatsFrontend(pub Publisher) *NatsFrontend {
	return &NatsFrontend{pub: pub}
}

func (f *NatsFrontend) PlayerActivityChanged(p *game.Player) {
	v := game.ViewOf(p)
	f.publish(p, Envelope{Type: EnvelopeView, View: &v})
}

func (f *NatsFrontend) PlayerReceivedEvent(p *game.Player, message string) {
	f.publish(p, Envelope{Type: EnvelopeEvent, Message: message})
}

func (f *NatsFrontend) publish(p *game.Player, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("encoding envelope", "player", p, "error", err)
		return
	}
	err = f.pub.Publish(PlayerSubject(p.ID()), data)
	switch {
	case errors.Is(err, ErrNotStarted):
		slog.Debug("dropping message before nats is up", "player", p, "type", env.Type)
	case err != nil:
		slog.Warn("publishing to player", "player", p, "error", err)
	}
}
