package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// SettingStep ensures a key in a YAML, TOML, INI or JSON file holds a value.
type SettingStep struct {
	baseStep

	fs     ports.FileSystem
	path   string
	format Format
	key    string
	value  interface{}
}

// NewSettingStep creates a setting step. path must already be resolved.
func NewSettingStep(spec StepSpec, path string, fsys ports.FileSystem) *SettingStep {
	format := spec.Format
	if format == "" {
		format = FormatFromPath(path)
	}
	s := &SettingStep{
		fs:     fsys,
		path:   path,
		format: format,
		key:    spec.Key,
		value:  spec.Value,
	}
	s.init(spec)
	return s
}

// Path returns the settings file.
func (s *SettingStep) Path() string { return s.path }

// Refresh re-reads the settings file.
func (s *SettingStep) Refresh(context.Context) {
	s.setComplete(s.check())
}

func (s *SettingStep) check() bool {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return false
	}
	doc, err := decodeDocument(s.format, data)
	if err != nil {
		return false
	}
	got, ok := doc.Get(s.key)
	return ok && got == fmt.Sprint(s.value)
}

// CanExecute requires the settings file's directory to exist.
func (s *SettingStep) CanExecute() bool {
	return s.fs.IsDir(filepath.Dir(s.path))
}

// Execute writes the value, preserving the rest of the document.
func (s *SettingStep) Execute(context.Context) {
	err := s.apply()
	s.setFailure(err)
	s.setComplete(s.check())
	s.NotifyFinished()
}

func (s *SettingStep) apply() error {
	data, err := s.fs.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	doc, err := decodeDocument(s.format, data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if err := doc.Set(s.key, s.value); err != nil {
		return fmt.Errorf("failed to set %s in %s: %w", s.key, s.path, err)
	}

	out, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}
	if err := s.fs.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
