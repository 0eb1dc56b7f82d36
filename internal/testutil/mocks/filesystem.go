package mocks

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// FileSystem is a thread-safe in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a file and its parent directory.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
	fs.dirs[filepath.Dir(path)] = true
}

// AddDir adds a directory.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
}

// ReadFile reads a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	data, ok := fs.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile writes a file. The parent directory must exist.
func (fs *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if dir := filepath.Dir(path); !fs.isDirLocked(dir) {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	fs.files[path] = append([]byte(nil), data...)
	return nil
}

// Exists reports whether path is a known file or directory.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, isFile := fs.files[path]
	return isFile || fs.dirs[path]
}

// IsDir reports whether path is a known directory.
func (fs *FileSystem) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.isDirLocked(path)
}

func (fs *FileSystem) isDirLocked(path string) bool {
	return path == "." || path == "/" || fs.dirs[path]
}

// MkdirAll records path and its parents as directories.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for p := path; p != "." && p != "/" && p != ""; p = filepath.Dir(p) {
		fs.dirs[p] = true
	}
	return nil
}

// Content returns a file's content as a string, or "" if missing.
func (fs *FileSystem) Content(path string) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return string(fs.files[path])
}

var _ ports.FileSystem = (*FileSystem)(nil)
