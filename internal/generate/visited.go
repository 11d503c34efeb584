package generate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"couponprobe/internal/logging"
)

// VisitedStore is the durable set of candidates already produced. The log is
// one candidate per line, append-only; a missing file is an empty set. All
// mutation goes through a single mutex. AddIfAbsent inserts into the in-memory
// set before appending and syncing the line, so the current run never reuses a
// candidate even when the append fails; only an unpersisted entry can be
// probed again after a restart.
type VisitedStore struct {
	path string

	mu   sync.Mutex
	f    *os.File
	seen map[string]struct{}
}

func OpenVisited(path string) (*VisitedStore, error) {
	s := &VisitedStore{path: path, seen: make(map[string]struct{})}

	if err := s.loadExisting(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("visited dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open visited log: %w", err)
	}
	s.f = f

	if len(s.seen) > 0 {
		logging.New("visited").Info("loaded visited candidates", "count", len(s.seen), "path", path)
	}
	return s, nil
}

func (s *VisitedStore) loadExisting() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read visited log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			s.seen[line] = struct{}{}
		}
	}
	return sc.Err()
}

func (s *VisitedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *VisitedStore) Contains(candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[candidate]
	return ok
}

// AddIfAbsent atomically tests membership and, if absent, appends the
// candidate to the log before inserting it into the set. It reports whether
// the candidate was newly added. On a write failure the candidate is still
// held in memory (so this run cannot reuse it) and the error is returned; the
// unpersisted entry may be probed again after a restart.
func (s *VisitedStore) AddIfAbsent(candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[candidate]; ok {
		return false, nil
	}
	s.seen[candidate] = struct{}{}

	if s.f == nil {
		return true, fmt.Errorf("visited log closed")
	}
	if _, err := s.f.WriteString(candidate + "\n"); err != nil {
		return true, fmt.Errorf("append visited: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return true, fmt.Errorf("sync visited: %w", err)
	}
	return true, nil
}

// Clear deletes the persisted log and resets the set to empty.
func (s *VisitedStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f != nil {
		if err := s.f.Close(); err != nil {
			return err
		}
		s.f = nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove visited log: %w", err)
	}
	s.seen = make(map[string]struct{})

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen visited log: %w", err)
	}
	s.f = f
	return nil
}

func (s *VisitedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
