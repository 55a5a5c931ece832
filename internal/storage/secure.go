package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	tempSuffix    = ".saving"
	retiredSuffix = ".old"
)

// FS is the slice of the filesystem the save protocol touches.
type FS interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
	ReadFile(name string) ([]byte, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error
}

// OSFS is FS backed by the os package.
type OSFS struct{}

func (OSFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (OSFS) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (OSFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (OSFS) Remove(name string) error                     { return os.Remove(name) }
func (OSFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// ErrVerifyMismatch is returned when the temp file does not read back as written.
var ErrVerifyMismatch = errors.New("saved file does not match written data")

// SaveSecurely commits data to path so that readers only ever observe the
// previous file or the complete new one. The data is written to a sibling
// temp file and read back for comparison. Only then is the previous file
// retired and the temp file renamed into place. Any failure before the
// final rename leaves the previous file untouched.
func SaveSecurely(fsys FS, path string, data []byte) error {
	tmp := path + tempSuffix
	retired := path + retiredSuffix

	if err := fsys.WriteFile(tmp, data, 0o644); err != nil {
		discard(fsys, tmp)
		return fmt.Errorf("writing temp file: %w", err)
	}

	readBack, err := fsys.ReadFile(tmp)
	if err != nil {
		discard(fsys, tmp)
		return fmt.Errorf("reading back temp file: %w", err)
	}
	if !bytes.Equal(readBack, data) {
		discard(fsys, tmp)
		return fmt.Errorf("verifying temp file: %w", ErrVerifyMismatch)
	}

	hadPrevious := true
	if err := fsys.Rename(path, retired); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			discard(fsys, tmp)
			return fmt.Errorf("retiring previous file: %w", err)
		}
		hadPrevious = false
	}

	if err := fsys.Rename(tmp, path); err != nil {
		if hadPrevious {
			if restoreErr := fsys.Rename(retired, path); restoreErr != nil {
				slog.Error("restoring previous file after failed save", "path", path, "error", restoreErr)
			}
		}
		discard(fsys, tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	if hadPrevious {
		if err := fsys.Remove(retired); err != nil {
			slog.Warn("removing retired file", "path", retired, "error", err)
		}
	}
	return nil
}

func discard(fsys FS, path string) {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// Writer serializes documents and commits them with SaveSecurely, recording
// each successful save in an optional index.
type Writer struct {
	fs    FS
	index *SaveIndex
	now   func() time.Time
}

type WriterOpt func(*Writer)

func WithFS(fsys FS) WriterOpt {
	return func(w *Writer) {
		w.fs = fsys
	}
}

func WithIndex(idx *SaveIndex) WriterOpt {
	return func(w *Writer) {
		w.index = idx
	}
}

func NewWriter(opts ...WriterOpt) *Writer {
	w := &Writer{
		fs:  OSFS{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Save marshals v as indented JSON and commits it to path.
func (w *Writer) Save(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}

	if err := w.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", filepath.Base(path), err)
	}

	if err := SaveSecurely(w.fs, path, data); err != nil {
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}

	if w.index != nil {
		sum := sha256.Sum256(data)
		w.index.Record(SaveRecord{
			Path:    path,
			Digest:  hex.EncodeToString(sum[:]),
			Size:    len(data),
			SavedAt: w.now().UTC(),
		})
	}

	slog.DebugContext(ctx, "saved document", "path", path, "bytes", len(data))
	return nil
}
