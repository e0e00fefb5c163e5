package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobarber/gobarber-client/pkg/logger"
	"go.uber.org/zap"
)

// FileStorage keeps every key in a single JSON document. Each mutation
// rewrites the document through a temp file and a rename, so a MultiSet or
// MultiRemove either lands completely or not at all.
type FileStorage struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFileStorage opens (or lazily creates) the store at path
func NewFileStorage(path string) (*FileStorage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}

	s := &FileStorage{
		path:   path,
		values: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) MultiGet(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *FileStorage) MultiSet(ctx context.Context, pairs ...Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	for _, p := range pairs {
		next[p.Key] = p.Value
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStorage) MultiRemove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	for _, k := range keys {
		delete(next, k)
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStorage) copyLocked() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *FileStorage) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	values := make(map[string]string)
	if err := json.Unmarshal(b, &values); err != nil {
		// An undecodable document reads as signed out; it is kept aside and
		// replaced by the next write.
		aside := s.CorruptPath()
		logger.Warn("Session storage file is corrupt, starting empty",
			zap.String("path", s.path),
			zap.String("moved_to", aside),
			zap.Error(err))
		if rerr := os.Rename(s.path, aside); rerr != nil {
			logger.Warn("Failed to move corrupt session storage aside", zap.Error(rerr))
		}
		return nil
	}
	if values != nil {
		s.values = values
	}
	return nil
}

// CorruptPath is where an undecodable storage document is moved on open
func (s *FileStorage) CorruptPath() string {
	return s.path + ".corrupt"
}

func (s *FileStorage) persist(values map[string]string) error {
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
