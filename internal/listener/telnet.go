package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves players over plain telnet.
type TelnetListener struct {
	listenerConfig
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager, opts ...ListenerOpt) *TelnetListener {
	l := &TelnetListener{
		port: port,
		cm:   cm,
	}
	for _, opt := range opts {
		opt(&l.listenerConfig)
	}
	return l
}

func (l *TelnetListener) Start(ctx context.Context) error {
	sessions := newTelnetSessions(l.cm)
	svr := telnet.NewServer(net.JoinHostPort(l.host, strconv.Itoa(int(l.port))), sessions)
	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	returned := make(chan struct{})
	defer close(returned)
	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			sessions.closeAll()
		case <-returned:
		}
	}()

	err := svr.ListenAndServe()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("port %d is already in use (another server running?)", l.port)
	default:
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}
}

// telnetSessions plays every accepted telnet connection. All of them share
// one context so shutdown ends them together.
type telnetSessions struct {
	cm     *ConnectionManager
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTelnetSessions(cm *ConnectionManager) *telnetSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &telnetSessions{cm: cm, ctx: ctx, cancel: cancel}
}

func (s *telnetSessions) HandleTelnet(conn *telnet.Connection) {
	s.wg.Add(1)
	defer s.wg.Done()
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("closing telnet connection", "error", err)
		}
	}()

	s.cm.AcceptConnection(s.ctx, conn)
}

// closeAll ends every running session and waits for them to finish.
func (s *telnetSessions) closeAll() {
	s.cancel()
	s.wg.Wait()
}
