package ui

import "time"

// FrameMsg drives one host frame.
type FrameMsg time.Time
