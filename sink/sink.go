// Package sink provides output destinations for rendered documentation.
package sink

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Sink receives rendered documents. Implementations must be safe for
// concurrent use.
type Sink interface {
	// WriteFile stores content under a slash-separated relative name.
	WriteFile(ctx context.Context, name string, content []byte) error
}

// FilesystemSink writes documents below a root directory. Each write goes to
// a temp file that is renamed into place, so readers never see partial output.
type FilesystemSink struct {
	Root string

	// Mode is the permission of written files (default 0644).
	Mode os.FileMode

	// Overwrite replaces existing files. When false, writing an existing
	// file is an error.
	Overwrite bool
}

// NewFilesystemSink returns a sink writing to root, overwriting existing files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644, Overwrite: true}
}

func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := s.writeTemp(dir, content)
	if err != nil {
		return err
	}
	// Removing tmp is a no-op once it has been renamed.
	defer os.Remove(tmp)

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Overwrite {
		if err := os.Rename(tmp, target); err != nil {
			return fmt.Errorf("rename %s: %w", name, err)
		}
		return nil
	}
	// Link fails if target exists, without a stat/rename race.
	if err := os.Link(tmp, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %q", name)
		}
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

// resolve joins name to the root and rejects results outside of it.
func (s *FilesystemSink) resolve(name string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", name)
	}
	return target, nil
}

func (s *FilesystemSink) writeTemp(dir string, content []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".restdoc-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}
	_, werr := f.Write(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Chmod(f.Name(), mode); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	return f.Name(), nil
}

// MemorySink keeps documents in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = slices.Clone(content)
	return nil
}

// Files returns a copy of all stored documents.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for name, content := range s.files {
		out[name] = slices.Clone(content)
	}
	return out
}

// Names returns the stored document names, sorted.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.files))
}

// Get returns a copy of one document, or nil.
func (s *MemorySink) Get(name string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files[name])
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.files)
}

// ValidatePath checks that name is a clean, relative, slash-separated path
// without parent references.
func ValidatePath(name string) error {
	switch {
	case name == "":
		return errors.New("path is empty")
	case filepath.IsAbs(name) || strings.HasPrefix(name, "/") || hasDriveLetter(name):
		return errors.New("absolute paths not allowed")
	case slices.Contains(strings.Split(filepath.ToSlash(name), "/"), ".."):
		return errors.New("path traversal not allowed")
	}
	if clean := path.Clean(filepath.ToSlash(name)); clean != filepath.ToSlash(name) {
		return fmt.Errorf("path is not clean (expected %q, got %q)", clean, name)
	}
	return nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}
