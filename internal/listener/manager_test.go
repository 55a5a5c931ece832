package listener

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

// blockingRunner holds every session open until release is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	err     error

	mu   sync.Mutex
	runs int
}

func (r *blockingRunner) RunSession(ctx context.Context, rw io.ReadWriter) error {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	r.started <- struct{}{}
	<-r.release
	return r.err
}

func TestConnectionManager_Limit(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}, 2), release: make(chan struct{})}
	cm := NewConnectionManager(runner, WithMaxConnections(1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		cm.AcceptConnection(context.Background(), &bytes.Buffer{})
	}()
	<-runner.started
	testutil.AssertEqual(t, "active", cm.Active(), 1)

	var turnedAway bytes.Buffer
	cm.AcceptConnection(context.Background(), &turnedAway)
	testutil.AssertEqual(t, "full message", turnedAway.String(), fullMessage)
	testutil.AssertEqual(t, "runs", runner.runs, 1)

	close(runner.release)
	<-done
	testutil.AssertEqual(t, "released", cm.Active(), 0)
}

func TestConnectionManager_Unlimited(t *testing.T) {
	tests := map[string]struct {
		err error
	}{
		"clean exit":  {},
		"hang up":     {err: io.EOF},
		"shutdown":    {err: context.Canceled},
		"other error": {err: errors.New("boom")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &blockingRunner{started: make(chan struct{}, 3), release: make(chan struct{}), err: tt.err}
			close(runner.release)
			cm := NewConnectionManager(runner)

			for range 3 {
				cm.AcceptConnection(context.Background(), struct {
					io.Reader
					io.Writer
				}{strings.NewReader(""), io.Discard})
			}
			testutil.AssertEqual(t, "runs", runner.runs, 3)
			testutil.AssertEqual(t, "active", cm.Active(), 0)
		})
	}
}
