package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const fullMessage = "The world is full, please come back later.\n"

type listenerConfig struct {
	host string
}

type ListenerOpt func(*listenerConfig)

// WithHost binds the listener to host instead of every interface.
func WithHost(host string) ListenerOpt {
	return func(c *listenerConfig) {
		c.host = host
	}
}

// SessionRunner plays one connected terminal until it leaves.
type SessionRunner interface {
	RunSession(ctx context.Context, rw io.ReadWriter) error
}

// ConnectionManager hands accepted connections to the session runner and
// keeps track of who is connected.
type ConnectionManager struct {
	runner         SessionRunner
	maxConnections int

	mu     sync.Mutex
	active map[string]time.Time
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithMaxConnections turns away connections beyond n. Zero means no limit.
func WithMaxConnections(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.maxConnections = n
	}
}

func NewConnectionManager(runner SessionRunner, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		runner: runner,
		active: map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active is the number of connections being served.
func (m *ConnectionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	id, ok := m.open()
	if !ok {
		slog.WarnContext(ctx, "turning away connection", "limit", m.maxConnections)
		_, _ = io.WriteString(conn, fullMessage)
		return
	}
	since := time.Now()
	slog.InfoContext(ctx, "connection opened", "conn", id)
	defer func() {
		m.close(id)
		slog.InfoContext(ctx, "connection closed", "conn", id, "duration", time.Since(since).Round(time.Second))
	}()

	err := m.runner.RunSession(ctx, conn)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		slog.WarnContext(ctx, "player session", "conn", id, "error", err)
	}
}

func (m *ConnectionManager) open() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxConnections > 0 && len(m.active) >= m.maxConnections {
		return "", false
	}
	id := uuid.NewString()
	m.active[id] = time.Now()
	return id, true
}

func (m *ConnectionManager) close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
}
