package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SaveRecord describes one committed save.
type SaveRecord struct {
	Path    string
	Digest  string
	Size    int
	SavedAt time.Time
}

// SaveIndex keeps a sqlite history of committed saves. Records are written
// by a single background goroutine so saving never waits on the database.
type SaveIndex struct {
	db *sql.DB

	mu     sync.RWMutex
	ch     chan SaveRecord
	wg     sync.WaitGroup
	once   sync.Once
	closed bool
}

func OpenSaveIndex(path string) (*SaveIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS saves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			digest TEXT NOT NULL,
			size INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_path ON saves(path, id);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing save index: %w", err)
		}
	}

	idx := &SaveIndex{
		db: db,
		ch: make(chan SaveRecord, 1024),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

// Record queues r for insertion. Records arriving after Close are dropped.
func (idx *SaveIndex) Record(r SaveRecord) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return
	}
	select {
	case idx.ch <- r:
	default:
		slog.Warn("save index queue full, dropping record", "path", r.Path)
	}
}

func (idx *SaveIndex) loop() {
	for r := range idx.ch {
		_, err := idx.db.Exec(
			`INSERT INTO saves (path, digest, size, saved_at) VALUES (?, ?, ?, ?)`,
			r.Path, r.Digest, r.Size, r.SavedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			slog.Error("recording save", "path", r.Path, "error", err)
		}
	}
}

// Latest returns the most recent record for path.
func (idx *SaveIndex) Latest(ctx context.Context, path string) (SaveRecord, bool, error) {
	row := idx.db.QueryRowContext(ctx,
		`SELECT path, digest, size, saved_at FROM saves WHERE path = ? ORDER BY id DESC LIMIT 1`, path)

	var (
		r       SaveRecord
		savedAt string
	)
	if err := row.Scan(&r.Path, &r.Digest, &r.Size, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SaveRecord{}, false, nil
		}
		return SaveRecord{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return SaveRecord{}, false, fmt.Errorf("parsing saved_at: %w", err)
	}
	r.SavedAt = t
	return r, true, nil
}

// Close drains queued records and closes the database.
func (idx *SaveIndex) Close() error {
	var err error
	idx.once.Do(func() {
		idx.mu.Lock()
		idx.closed = true
		close(idx.ch)
		idx.mu.Unlock()
		idx.wg.Wait()
		err = idx.db.Close()
	})
	return err
}
