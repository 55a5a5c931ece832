package driver

import (
	"context"
	"time"
)

type EventLoopOpt func(*EventLoop)

func WithTickLength(tickLength time.Duration) EventLoopOpt {
	return func(l *EventLoop) {
		l.tickLength = tickLength
	}
}

// WithDrainTimeout bounds how long queued tasks may run after shutdown.
func WithDrainTimeout(d time.Duration) EventLoopOpt {
	return func(l *EventLoop) {
		l.drainTimeout = d
	}
}

func WithTicker(t Ticker) EventLoopOpt {
	return func(l *EventLoop) {
		l.AddTicker(t)
	}
}

func WithShutdownHook(hook func(context.Context)) EventLoopOpt {
	return func(l *EventLoop) {
		l.AddShutdownHook(hook)
	}
}
