package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// FileStep ensures a file has exact content, creating parent directories.
type FileStep struct {
	baseStep

	fs      ports.FileSystem
	path    string
	content string
}

// NewFileStep creates a file step. path must already be resolved.
func NewFileStep(spec StepSpec, path string, fsys ports.FileSystem) *FileStep {
	s := &FileStep{
		fs:      fsys,
		path:    path,
		content: spec.Content,
	}
	s.init(spec)
	return s
}

// Path returns the managed file.
func (s *FileStep) Path() string { return s.path }

// Refresh compares the file with the desired content.
func (s *FileStep) Refresh(context.Context) {
	data, err := s.fs.ReadFile(s.path)
	s.setComplete(err == nil && string(data) == s.content)
}

// CanExecute is always true; missing directories are created.
func (s *FileStep) CanExecute() bool { return true }

// Execute writes the file.
func (s *FileStep) Execute(ctx context.Context) {
	var err error
	if mkErr := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); mkErr != nil {
		err = fmt.Errorf("failed to create directory for %s: %w", s.path, mkErr)
	} else if wErr := s.fs.WriteFile(s.path, []byte(s.content), 0o644); wErr != nil {
		err = fmt.Errorf("failed to write %s: %w", s.path, wErr)
	}
	s.setFailure(err)
	s.Refresh(ctx)
	s.NotifyFinished()
}
