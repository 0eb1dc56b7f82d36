package ports

import "context"

// BusyProbe reports whether the host is in the middle of work (an import, a
// rebuild, a package install) that step inspection must not race.
type BusyProbe interface {
	Busy(ctx context.Context) bool
}

// BusyFunc adapts a function to the BusyProbe interface.
type BusyFunc func(ctx context.Context) bool

// Busy calls f(ctx).
func (f BusyFunc) Busy(ctx context.Context) bool {
	return f(ctx)
}
