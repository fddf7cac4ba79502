package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Backend keeps every collection in one JSON document on disk. Saves write a
// temp file in the same directory and rename it over the target, so readers
// see either the old document or the new one.
type Backend struct {
	mu   sync.Mutex
	path string
}

// NewBackend returns a backend writing to path. The file is created on the first Save.
func NewBackend(path string) *Backend {
	return &Backend{path: path}
}

// Load returns the requested collections present in the document.
func (b *Backend) Load(_ context.Context, names ...string) (map[string][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(names))
	for _, n := range names {
		if v, ok := doc[n]; ok {
			out[n] = []byte(v)
		}
	}
	return out, nil
}

// Save merges values into the document and replaces the file atomically.
func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := b.read()
	if err != nil {
		return err
	}
	for name, v := range values {
		if !json.Valid(v) {
			return fmt.Errorf("collection %s is not valid JSON", name)
		}
		doc[name] = json.RawMessage(v)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return b.write(data)
}

// Ping checks that the target directory exists.
func (b *Backend) Ping(context.Context) error {
	dir := filepath.Dir(b.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", dir)
	}
	return nil
}

// Close is a no-op; nothing is held open between calls.
func (b *Backend) Close() error { return nil }

func (b *Backend) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return doc, nil
}

func (b *Backend) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}
