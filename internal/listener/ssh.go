package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/pixil98/go-rpg/internal/player"
	"golang.org/x/crypto/ssh"
)

// SshListener serves players over ssh without authentication. The ssh user
// name is offered to the login as the player's name, so `ssh ann@host` plays
// Ann.
type SshListener struct {
	listenerConfig
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer, opts ...ListenerOpt) *SshListener {
	l := &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
	for _, opt := range opts {
		opt(&l.listenerConfig)
	}
	return l
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{NoClientAuth: true}
	config.AddHostKey(l.hostKey)

	ln, err := net.Listen("tcp", net.JoinHostPort(l.host, strconv.Itoa(int(l.port))))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	// Connections outlive ctx long enough to be told the world is closing.
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serve(connCtx, conn, config)
		}()
	}
}

// serve runs the handshake and plays every session channel the client opens,
// one after the other.
func (l *SshListener) serve(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()
	go ssh.DiscardRequests(reqs)

	slog.InfoContext(ctx, "ssh client connected", "remote", conn.RemoteAddr(), "user", sshConn.User())
	ctx = player.WithLoginName(ctx, sshConn.User())

	// Closing the connection ends the channel loop below.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		l.play(ctx, newChan)
	}
}

func (l *SshListener) play(ctx context.Context, newChan ssh.NewChannel) {
	ch, requests, err := newChan.Accept()
	if err != nil {
		slog.WarnContext(ctx, "accepting ssh channel", "error", err)
		return
	}
	defer ch.Close()

	select {
	case <-awaitShell(requests):
		l.cm.AcceptConnection(ctx, newLineEndings(ch))
	case <-ctx.Done():
	}
}

// awaitShell answers channel requests and closes the returned channel once
// the client asks for a shell. Clients only forward input after that reply.
// Ptys are refused so the client keeps local echo and line editing.
func awaitShell(requests <-chan *ssh.Request) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		shell := false
		for req := range requests {
			ok := req.Type == "shell" && !shell
			req.Reply(ok, nil)
			if ok {
				shell = true
				close(ready)
			}
		}
	}()
	return ready
}
