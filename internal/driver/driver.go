package driver

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	DefaultTickLength   = time.Second * 2
	DefaultDrainTimeout = time.Second * 10
)

// ErrStopped is returned when submitting to a loop that has shut down.
var ErrStopped = errors.New("event loop stopped")

// Ticker is run on the loop once per tick.
type Ticker interface {
	Tick(context.Context) error
}

// EventLoop runs every game task on a single goroutine. Tasks run in order of
// their fire time: the submit time for immediate tasks, the due time for
// delayed ones. Ties run in submission order.
type EventLoop struct {
	tickLength    time.Duration
	drainTimeout  time.Duration
	tickers       []Ticker
	shutdownHooks []func(context.Context)

	mu      sync.Mutex
	queue   []*queuedTask
	delayed delayQueue
	seq     uint64
	stopped bool
	wake    chan struct{}
}

func NewEventLoop(opts ...EventLoopOpt) *EventLoop {
	l := &EventLoop{
		tickLength:   DefaultTickLength,
		drainTimeout: DefaultDrainTimeout,
		wake:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AddTicker registers t. Call it before Start.
func (l *EventLoop) AddTicker(t Ticker) {
	l.tickers = append(l.tickers, t)
}

// AddShutdownHook registers hook to run on the loop goroutine once the queue
// is drained. Call it before Start.
func (l *EventLoop) AddShutdownHook(hook func(context.Context)) {
	l.shutdownHooks = append(l.shutdownHooks, hook)
}

// Submit queues task to run on the loop.
func (l *EventLoop) Submit(task func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	l.seq++
	l.queue = append(l.queue, &queuedTask{at: time.Now(), seq: l.seq, task: task})
	l.signal()
	return nil
}

// SubmitAfter queues task to run on the loop once delay has passed. Tasks
// with the same due time run in submission order.
func (l *EventLoop) SubmitAfter(delay time.Duration, task func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	l.seq++
	heap.Push(&l.delayed, &queuedTask{at: time.Now().Add(delay), seq: l.seq, task: task})
	l.signal()
	return nil
}

// signal wakes the loop. Callers hold mu.
func (l *EventLoop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Start runs the loop until ctx is done. Tasks already queued at that point
// are drained, then the shutdown hooks run.
func (l *EventLoop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.tickLength)
	defer ticker.Stop()
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	slog.InfoContext(ctx, "event loop started")
	for {
		l.runQueued()

		var timerC <-chan time.Time
		if due, ok := l.nextDue(); ok {
			timer.Reset(time.Until(due))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			l.shutdown()
			return nil
		case <-l.wake:
		case <-timerC:
		case <-ticker.C:
			if err := l.tick(ctx); err != nil {
				l.shutdown()
				return err
			}
		}
		timer.Stop()
	}
}

func (l *EventLoop) tick(ctx context.Context) error {
	for _, t := range l.tickers {
		if err := t.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// runQueued runs everything that was queued when it started together with
// the delayed tasks that have come due, merged by fire time.
func (l *EventLoop) runQueued() {
	l.mu.Lock()
	now := time.Now()
	var due []*queuedTask
	for len(l.delayed) > 0 && !l.delayed[0].at.After(now) {
		due = append(due, heap.Pop(&l.delayed).(*queuedTask))
	}
	batch := mergeByFireTime(l.queue, due)
	l.queue = nil
	l.mu.Unlock()

	for _, qt := range batch {
		run(qt.task)
	}
}

// mergeByFireTime merges two lists that are each ordered by fire time.
func mergeByFireTime(a, b []*queuedTask) []*queuedTask {
	if len(b) == 0 {
		return a
	}
	out := make([]*queuedTask, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if b[0].before(a[0]) {
			out, b = append(out, b[0]), b[1:]
		} else {
			out, a = append(out, a[0]), a[1:]
		}
	}
	out = append(out, a...)
	return append(out, b...)
}

func (l *EventLoop) nextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) > 0 {
		return time.Now(), true
	}
	if len(l.delayed) == 0 {
		return time.Time{}, false
	}
	return l.delayed[0].at, true
}

// shutdown stops accepting tasks, runs what is left in the queue within the
// drain timeout and hands over to the shutdown hooks. Delayed tasks that are
// not due yet are dropped.
func (l *EventLoop) shutdown() {
	l.mu.Lock()
	l.stopped = true
	pending := l.queue
	l.queue = nil
	dropped := len(l.delayed)
	l.delayed = nil
	l.mu.Unlock()

	slog.Info("event loop stopping", "pending", len(pending), "dropped", dropped)

	deadline := time.Now().Add(l.drainTimeout)
	for i, qt := range pending {
		if time.Now().After(deadline) {
			slog.Warn("drain timeout reached", "abandoned", len(pending)-i)
			break
		}
		run(qt.task)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.drainTimeout)
	defer cancel()
	for _, hook := range l.shutdownHooks {
		hook(ctx)
	}
	slog.Info("event loop stopped")
}

// run executes task and keeps the loop alive if it panics.
func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}

// queuedTask is a task with its fire time.
type queuedTask struct {
	at   time.Time
	seq  uint64
	task func()
}

func (t *queuedTask) before(o *queuedTask) bool {
	if t.at.Equal(o.at) {
		return t.seq < o.seq
	}
	return t.at.Before(o.at)
}

// delayQueue is a min-heap on due time, then submission order.
type delayQueue []*queuedTask

func (q delayQueue) Len() int { return len(q) }

func (q delayQueue) Less(i, j int) bool { return q[i].before(q[j]) }

func (q delayQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *delayQueue) Push(x any) { *q = append(*q, x.(*queuedTask)) }

func (q *delayQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
