package keyval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store backed by a single JSON file, read and rewritten on every
// operation. This mirrors how the browser app treated local storage: small
// payloads, synchronous access, corrupt content treated as empty.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	val, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	data[key] = value
	return f.save(data)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	delete(data, key)
	return f.save(data)
}

// load returns the stored map. Missing or unparseable files yield an empty
// map, never an error.
func (f *File) load() map[string]string {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return make(map[string]string)
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return make(map[string]string)
	}
	return data
}

func (f *File) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// Write to a temp file first so a crash mid-write never corrupts the store.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}
