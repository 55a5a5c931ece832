package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-rpg/internal/activities"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-testutil"
)

type inlineScheduler struct{}

func (inlineScheduler) Submit(task func()) error                      { task(); return nil }
func (inlineScheduler) SubmitAfter(_ time.Duration, task func()) error { return nil }

// memoryBus keeps what was published per subject.
type memoryBus struct {
	mu   sync.Mutex
	sent map[string][][]byte
	err  error
}

func (b *memoryBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if b.sent == nil {
		b.sent = map[string][][]byte{}
	}
	b.sent[subject] = append(b.sent[subject], data)
	return nil
}

func testSession(t *testing.T, frontend game.Frontend) *game.Session {
	t.Helper()
	town := &game.Location{ID: 0, Name: "Town", Description: "Quiet.", Directions: map[string]int64{}}
	club := &game.Item{ID: 1, Type: game.ItemWeapon, Name: "Club", Attributes: game.NewAttributeSet().Freeze()}
	catalog, err := game.NewCatalog([]*game.Location{town}, []*game.Item{club}, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg, err := activities.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s, err := game.NewSession(inlineScheduler{}, catalog, reg,
		game.WithDefaultActivity(activities.KindLocation),
		game.WithFrontend(frontend),
	)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func decode(t *testing.T, data []byte) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func TestNatsFrontend(t *testing.T) {
	bus := &memoryBus{}
	s := testSession(t, NewNatsFrontend(bus))

	ann, err := s.CreatePlayer("Ann")
	if err != nil {
		t.Fatalf("creating player: %v", err)
	}
	s.Notify(ann, "hello")

	sent := bus.sent[PlayerSubject(ann.ID())]
	testutil.AssertEqual(t, "messages", len(sent), 2)

	view := decode(t, sent[0])
	testutil.AssertEqual(t, "view type", view.Type, EnvelopeView)
	testutil.AssertEqual(t, "view present", view.View != nil, true)
	testutil.AssertEqual(t, "activity", view.View.Activity, activities.KindLocation)
	testutil.AssertEqual(t, "description", view.View.Description, "You are in Town: Quiet.")

	event := decode(t, sent[1])
	testutil.AssertEqual(t, "event type", event.Type, EnvelopeEvent)
	testutil.AssertEqual(t, "message", event.Message, "hello")
}

func TestNatsFrontend_PublishFailureIsContained(t *testing.T) {
	bus := &memoryBus{err: errors.New("broken")}
	s := testSession(t, NewNatsFrontend(bus))

	ann, err := s.CreatePlayer("Ann")
	if err != nil {
		t.Fatalf("creating player: %v", err)
	}
	s.Notify(ann, "lost")
	testutil.AssertEqual(t, "nothing sent", len(bus.sent), 0)
}

func TestNatsServer_NotStarted(t *testing.T) {
	n, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	err = n.Publish("player-1", []byte("x"))
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	_, err = n.Subscribe("player-1", func([]byte) {})
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestNatsServer_PublishSubscribe(t *testing.T) {
	n, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Start(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("server: %v", err)
		}
	}()

	select {
	case <-n.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}

	got := make(chan []byte, 1)
	unsubscribe, err := n.Subscribe(PlayerSubject(7), func(data []byte) { got <- data })
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer unsubscribe()

	if err := n.Publish(PlayerSubject(7), []byte("ping")); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	select {
	case data := <-got:
		testutil.AssertEqual(t, "payload", string(data), "ping")
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
}
