// Package prefstore provides ports.PreferenceStore backends: in-memory, flat
// YAML/TOML/INI files, SQLite and Redis.
package prefstore

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// Backend names a store implementation.
type Backend string

// Supported backends.
const (
	BackendMemory Backend = "memory"
	BackendYAML   Backend = "yaml"
	BackendTOML   Backend = "toml"
	BackendINI    Backend = "ini"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown preference store backend")

// Store is a preference store that holds resources until closed.
type Store interface {
	ports.PreferenceStore
	io.Closer
}

// Config selects and locates a backend.
type Config struct {
	Backend Backend
	// Path is the file or database path for file and SQLite backends.
	Path string
	// Addr is the Redis address.
	Addr string
	// Prefix is prepended to every Redis key.
	Prefix string
}

// Open creates the configured store. An empty backend selects YAML.
func Open(cfg Config, fs ports.FileSystem) (Store, error) {
	backend := Backend(strings.ToLower(string(cfg.Backend)))
	if backend == "" {
		backend = BackendYAML
	}

	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendYAML, BackendTOML, BackendINI:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%s store needs a path", backend)
		}
		store, err := NewFileStore(ports.ExpandPath(cfg.Path), backend, fs)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, errors.New("sqlite store needs a path")
		}
		path := ports.ExpandPath(cfg.Path)
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		if cfg.Addr == "" {
			return nil, errors.New("redis store needs an address")
		}
		return NewRedis(cfg.Addr, cfg.Prefix), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// DefaultPath returns the conventional store file for a backend, relative to
// the state directory.
func DefaultPath(stateDir string, backend Backend) string {
	switch backend {
	case BackendTOML:
		return filepath.Join(stateDir, "state.toml")
	case BackendINI:
		return filepath.Join(stateDir, "state.ini")
	case BackendSQLite:
		return filepath.Join(stateDir, "state.db")
	default:
		return filepath.Join(stateDir, "state.yaml")
	}
}
