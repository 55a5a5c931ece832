package command

import (
	"context"
	"log/slog"
	"time"
)

type saver interface {
	Save(ctx context.Context) error
}

// autosaver saves the session from the loop's tick once interval has passed
// since the last save. A failed save is logged and retried on the next tick.
type autosaver struct {
	session  saver
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

func newAutosaver(s saver, interval time.Duration) *autosaver {
	return &autosaver{
		session:  s,
		interval: interval,
		now:      time.Now,
		last:     time.Now(),
	}
}

func (a *autosaver) Tick(ctx context.Context) error {
	now := a.now()
	if now.Sub(a.last) < a.interval {
		return nil
	}
	if err := a.session.Save(ctx); err != nil {
		slog.ErrorContext(ctx, "autosave failed", "error", err)
		return nil
	}
	a.last = now
	slog.DebugContext(ctx, "autosaved")
	return nil
}
