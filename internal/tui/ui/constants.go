package ui

import "time"

// Default component dimensions.
const (
	// DefaultWidth is the assumed terminal width before the first resize.
	DefaultWidth = 80

	// DefaultHeight is the assumed terminal height before the first resize.
	DefaultHeight = 24

	// DefaultProgressBarWidth is the default width for progress bars.
	DefaultProgressBarWidth = 40
)

// DefaultFrameInterval is the TUI host frame period.
const DefaultFrameInterval = 100 * time.Millisecond
