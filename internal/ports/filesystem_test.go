package ports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/.config/stepwise", filepath.Join(home, ".config/stepwise")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"/path/with~tilde", "/path/with~tilde"},
	}

	for _, tt := range tests {
		result := ExpandPath(tt.input)
		if result != tt.expected {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
