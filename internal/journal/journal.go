package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-rpg/internal/game"
)

const (
	DefaultPrefix    = "journal"
	DefaultQueueSize = 1024

	TypeEvent    = "event"
	TypeActivity = "activity"
)

// Entry is one line of the journal.
type Entry struct {
	Time     time.Time `json:"time"`
	Type     string    `json:"type"`
	PlayerID int64     `json:"player_id"`
	Player   string    `json:"player"`
	Activity string    `json:"activity,omitempty"`
	Location string    `json:"location,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Journal records every narrative event and activity change as compressed
// JSON lines, one file per hour. The frontend callbacks only queue entries;
// the worker goroutine does the writing.
type Journal struct {
	dir    string
	prefix string
	now    func() time.Time

	queueSize int
	queue     chan Entry

	// With an external stop, Start keeps writing past ctx until stop closes.
	external bool
	stop     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJournal(dir string, opts ...JournalOpt) *Journal {
	j := &Journal{
		dir:       dir,
		prefix:    DefaultPrefix,
		now:       time.Now,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.queue = make(chan Entry, j.queueSize)
	j.stop = make(chan struct{})
	return j
}

// ShutdownHooker runs hooks once it has finished its own work on shutdown.
type ShutdownHooker interface {
	AddShutdownHook(func(context.Context))
}

// StopOn ties the journal's lifetime to h: Start keeps recording after its
// context is done and only drains and closes once h runs its shutdown hooks.
// Events produced while h winds down still reach the journal.
func (j *Journal) StopOn(h ShutdownHooker) {
	j.external = true
	h.AddShutdownHook(func(context.Context) { j.Stop() })
}

// Stop makes Start write what is queued and return.
func (j *Journal) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *Journal) PlayerActivityChanged(p *game.Player) {
	e := j.entry(p, TypeActivity)
	if a := p.Activity(); a != nil {
		e.Activity = a.Kind()
	}
	j.enqueue(e)
}

func (j *Journal) PlayerReceivedEvent(p *game.Player, message string) {
	e := j.entry(p, TypeEvent)
	e.Message = message
	j.enqueue(e)
}

func (j *Journal) entry(p *game.Player, typ string) Entry {
	e := Entry{
		Time:     j.now().UTC(),
		Type:     typ,
		PlayerID: p.ID(),
		Player:   p.Name(),
	}
	if loc := p.Location(); loc != nil {
		e.Location = loc.Name
	}
	return e
}

func (j *Journal) enqueue(e Entry) {
	select {
	case j.queue <- e:
	default:
		slog.Warn("journal queue full, dropping entry", "player", e.Player, "type", e.Type)
	}
}

// Start writes queued entries until it is stopped, then writes whatever is
// still queued and closes the current file. Without StopOn, ctx being done
// stops it.
func (j *Journal) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "starting journal", "dir", j.dir)
	done := ctx.Done()
	if j.external {
		done = nil
	}
	for {
		select {
		case <-done:
			return j.drain()
		case <-j.stop:
			return j.drain()
		case e := <-j.queue:
			j.record(e)
		}
	}
}

func (j *Journal) drain() error {
	for {
		select {
		case e := <-j.queue:
			j.record(e)
		default:
			slog.Info("journal stopped")
			return j.Close()
		}
	}
}

func (j *Journal) record(e Entry) {
	if err := j.Write(e); err != nil {
		slog.Error("writing journal entry", "player", e.Player, "error", err)
		return
	}
	if len(j.queue) == 0 {
		if err := j.Flush(); err != nil {
			slog.Error("flushing journal", "error", err)
		}
	}
}

// Write appends e to the file for the hour it happened in.
func (j *Journal) Write(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	hour := e.Time.UTC().Format("2006-01-02-15")
	if hour != j.curHour {
		if err := j.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

// Flush pushes buffered entries through the encoder so the file on disk is a
// complete zstd stream up to this point.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return nil
	}
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.enc.Flush()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Journal) rotateLocked(hour string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	path := j.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriterSize(enc, 64*1024)
	j.curHour = hour
	return nil
}

func (j *Journal) closeLocked() error {
	var err error
	if j.w != nil {
		err = j.w.Flush()
	}
	if j.enc != nil {
		if cerr := j.enc.Close(); err == nil {
			err = cerr
		}
		j.enc = nil
	}
	if j.f != nil {
		if cerr := j.f.Close(); err == nil {
			err = cerr
		}
		j.f = nil
	}
	j.w = nil
	j.curHour = ""
	return err
}

func (j *Journal) pathForHour(hour string) string {
	return filepath.Join(j.dir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, hour))
}
