// Package store provides the persistence backends for the book collection:
// a JSON file (the default), SQLite, and an in-memory list. All of them
// implement books.Store, so the request pipelines never know which one is
// behind them.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/halcyonforge/bookvault/internal/books"
)

// Compile-time interface guard.
var _ books.Store = (*JSONFile)(nil)

const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// JSONFile persists the collection as an indented JSON array in a single
// file. Writes go through a temp file and rename so a crash mid-write never
// leaves a half-written store, and a sibling .lock file guards against other
// processes touching the same path.
type JSONFile struct {
	path     string
	fileLock *flock.Flock
	logger   *zap.Logger
}

// NewJSONFile creates a JSONFile store at path. The file itself is created
// lazily on first Save; a missing file loads as an empty collection.
func NewJSONFile(path string, logger *zap.Logger) *JSONFile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONFile{
		path:     path,
		fileLock: flock.New(path + ".lock"),
		logger:   logger,
	}
}

// Load reads the full collection. A missing, empty, or corrupt file is an
// empty collection rather than an error: the store file is rewritten whole
// on every save, so recovering locally beats failing the request.
func (s *JSONFile) Load(ctx context.Context) ([]books.Book, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []books.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []books.Book{}, nil
	}

	var records []books.Book
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("store file is corrupt, treating as empty collection",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []books.Book{}, nil
	}
	return records, nil
}

// Save replaces the stored collection atomically.
func (s *JSONFile) Save(ctx context.Context, records []books.Book) error {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Close removes the lock file.
func (s *JSONFile) Close() error {
	return os.Remove(s.fileLock.Path())
}

func (s *JSONFile) acquireLock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", s.fileLock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s is held by another process", s.fileLock.Path())
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}
