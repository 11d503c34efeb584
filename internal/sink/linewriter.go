package sink

import (
	"os"
	"path/filepath"
	"sync"
)

// lineWriter appends one text line at a time to a single file. Writes are
// unbuffered so each record is atomic on disk, and serialized so the file has
// exactly one writer even under concurrent callers.
type lineWriter struct {
	mu sync.Mutex
	f  *os.File
}

func newLineWriter(path string) (*lineWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &lineWriter{f: f}, nil
}

func (w *lineWriter) WriteLine(s string) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	_, err := w.f.WriteString(s + "\n")
	return err
}

func (w *lineWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f != nil {
		err := w.f.Close()
		w.f = nil
		return err
	}
	return nil
}
