// Package hostprobe reports whether the host is busy, so a run does not
// inspect steps while a package manager or build tool holds the workspace.
package hostprobe

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// DefaultBusyGlobs match lock files left by common tools while they run.
var DefaultBusyGlobs = []string{
	".git/index.lock",
	"**/node_modules/.staging",
	"**/.terraform.lock.hcl.lock",
	".stepwise/host.busy",
}

// Glob is busy while any pattern matches a path under its root.
type Glob struct {
	fsys     fs.FS
	patterns []string
	logger   ports.Logger
}

// NewGlob creates a glob probe rooted at dir. Patterns use doublestar syntax.
func NewGlob(dir string, patterns []string, logger ports.Logger) (*Glob, error) {
	return NewGlobFS(os.DirFS(dir), patterns, logger)
}

// NewGlobFS creates a glob probe over fsys.
func NewGlobFS(fsys fs.FS, patterns []string, logger ports.Logger) (*Glob, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid busy glob %q", p)
		}
	}
	return &Glob{fsys: fsys, patterns: patterns, logger: logger}, nil
}

// Busy reports whether any pattern matches.
func (g *Glob) Busy(ctx context.Context) bool {
	for _, p := range g.patterns {
		matches, err := doublestar.Glob(g.fsys, p)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			if g.logger != nil {
				g.logger.Debug(ctx, "host busy", ports.F("glob", p), ports.F("match", matches[0]))
			}
			return true
		}
	}
	return false
}

// Static is a busy flag set by the host itself.
type Static struct {
	busy atomic.Bool
}

// Set updates the flag.
func (s *Static) Set(busy bool) {
	s.busy.Store(busy)
}

// Busy returns the flag.
func (s *Static) Busy(context.Context) bool {
	return s.busy.Load()
}

// Any is busy while any of its probes is busy.
type Any []ports.BusyProbe

// Busy reports whether any probe is busy.
func (a Any) Busy(ctx context.Context) bool {
	for _, p := range a {
		if p != nil && p.Busy(ctx) {
			return true
		}
	}
	return false
}

var (
	_ ports.BusyProbe = (*Glob)(nil)
	_ ports.BusyProbe = (*Static)(nil)
	_ ports.BusyProbe = Any(nil)
)
