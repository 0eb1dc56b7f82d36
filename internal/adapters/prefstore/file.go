package prefstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// ErrCorrupt is returned when a store file cannot be decoded.
var ErrCorrupt = errors.New("preference file is corrupt")

// codec converts a flat key/value table to and from a file format.
type codec struct {
	decode func([]byte) (map[string]int, error)
	encode func(map[string]int) ([]byte, error)
}

var codecs = map[Backend]codec{
	BackendYAML: {
		decode: func(data []byte) (map[string]int, error) {
			values := map[string]int{}
			err := yaml.Unmarshal(data, &values)
			return values, err
		},
		encode: func(values map[string]int) ([]byte, error) {
			return yaml.Marshal(values)
		},
	},
	BackendTOML: {
		decode: func(data []byte) (map[string]int, error) {
			values := map[string]int{}
			err := toml.Unmarshal(data, &values)
			return values, err
		},
		encode: func(values map[string]int) ([]byte, error) {
			return toml.Marshal(values)
		},
	},
	BackendINI: {
		decode: decodeINI,
		encode: encodeINI,
	},
}

func decodeINI(data []byte) (map[string]int, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}
	values := map[string]int{}
	for _, key := range cfg.Section(ini.DefaultSection).Keys() {
		v, err := key.Int()
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key.Name(), err)
		}
		values[key.Name()] = v
	}
	return values, nil
}

func encodeINI(values map[string]int) ([]byte, error) {
	cfg := ini.Empty()
	sec := cfg.Section(ini.DefaultSection)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := sec.NewKey(k, fmt.Sprint(values[k])); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileStore keeps preferences in a single flat file. The file is re-read on
// every call so edits by other processes are seen.
type FileStore struct {
	mu    sync.Mutex
	path  string
	codec codec
	fs    ports.FileSystem
}

// NewFileStore creates a store at path in the yaml, toml or ini format.
func NewFileStore(path string, format Backend, fsys ports.FileSystem) (*FileStore, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a file format", ErrUnknownBackend, format)
	}
	return &FileStore{path: path, codec: c, fs: fsys}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// GetInt returns the stored value or def. A missing file holds no values.
func (s *FileStore) GetInt(_ context.Context, key string, def int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return def, err
	}
	if v, ok := values[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetInt stores value, creating the file and its directory when needed.
func (s *FileStore) SetInt(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := s.codec.encode(values)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := s.fs.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]int, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]int{}, nil
	}

	values, err := s.codec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	if values == nil {
		values = map[string]int{}
	}
	return values, nil
}
