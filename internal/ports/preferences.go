package ports

import "context"

// PreferenceStore is a process-wide integer key-value store that survives
// process restarts. The orchestrator keeps its cursor and run flags here.
type PreferenceStore interface {
	// GetInt returns the value stored under key, or def when the key is unset.
	GetInt(ctx context.Context, key string, def int) (int, error)

	// SetInt stores value under key.
	SetInt(ctx context.Context, key string, value int) error
}
