package keyb

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResourceSource resolves logical file names (keyboard.sys, gr.kl, ega.cpx)
// to file contents. Session consults one for every external lookup;
// Fileset is the production implementation backed by a real directory,
// builtinBlobs is the embedded fallback, and memSource lets tests and
// fixturegen build fixtures entirely in memory.
type ResourceSource interface {
	// Open returns the full contents of name. The returned error wraps
	// ErrFileNotFound when name does not exist in this source.
	Open(name string) ([]byte, error)
}

// Fileset resolves names against an ordered list of directories, the way
// the original resolves everything under a single "Z:\" drive letter:
// one flat namespace, first match wins.
type Fileset struct {
	Dirs []string
}

func (f *Fileset) Open(name string) ([]byte, error) {
	for _, dir := range f.Dirs {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("keyb: reading %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

// memSource is an in-memory ResourceSource used by tests and fixturegen to
// avoid touching the filesystem.
type memSource map[string][]byte

func (m memSource) Open(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return data, nil
}

// chainSource tries each source in turn and returns the first hit.
type chainSource []ResourceSource

func (c chainSource) Open(name string) ([]byte, error) {
	var lastErr error = ErrFileNotFound
	for _, s := range c {
		data, err := s.Open(name)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
