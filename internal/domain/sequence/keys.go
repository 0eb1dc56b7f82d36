package sequence

import "strings"

// DefaultNamespace prefixes preference keys when none is configured.
const DefaultNamespace = "stepwise"

// Keys names the preference entries an orchestrator persists.
type Keys struct {
	// Cursor holds the current step index, or Sentinel.
	Cursor string
	// Started is 1 while a requested run has not finished or aborted.
	Started string
	// LastCursor holds the cursor at the last Stop, or -1 after a finish.
	LastCursor string
	// Fingerprint holds the host fingerprint recorded when a run was confirmed.
	Fingerprint string
}

// NewKeys derives the preference keys for namespace.
func NewKeys(namespace string) Keys {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	return Keys{
		Cursor:      ns + ".cursor",
		Started:     ns + ".started",
		LastCursor:  ns + ".last-cursor",
		Fingerprint: ns + ".fingerprint",
	}
}
