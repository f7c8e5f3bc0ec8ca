package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Prunable is implemented by documents holding entries that may be invalid
// on disk. Prune keeps the entries for which keep returns true and reports
// how many were dropped.
type Prunable interface {
	Prune(keep func(entry any) bool) int
}

// File is a JSON document stored at a single path. Reads and writes are
// serialized; writes go to a temp file that is renamed over the target.
type File[T any] struct {
	path       string
	newDefault func() T
	validate   *validator.Validate

	mu sync.Mutex
}

func NewFile[T any](path string, newDefault func() T) *File[T] {
	return &File[T]{
		path:       path,
		newDefault: newDefault,
		validate:   validator.New(),
	}
}

func (f *File[T]) Path() string {
	return f.path
}

func (f *File[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File[T]) Save(doc T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(doc)
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (f *File[T]) Update(fn func(doc *T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return f.save(doc)
}

func (f *File[T]) load() (T, error) {
	doc := f.newDefault()
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return f.newDefault(), fmt.Errorf("decode %s: %w", f.path, err)
	}
	if p, ok := any(&doc).(Prunable); ok {
		if dropped := p.Prune(f.valid); dropped > 0 {
			slog.Warn("dropped invalid json entries", "path", f.path, "dropped", dropped)
		}
	}
	return doc, nil
}

func (f *File[T]) valid(entry any) bool {
	if err := f.validate.Struct(entry); err != nil {
		slog.Debug("invalid json entry", "path", f.path, "error", err)
		return false
	}
	return true
}

func (f *File[T]) save(doc T) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
