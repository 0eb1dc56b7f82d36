package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/domain/setup"
)

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "stepwise", rootCmd.Use)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"config", "plan", "verbose", "yes"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, flags.Lookup(name))
		})
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	want := map[string]bool{"apply": false, "resume": false, "stop": false, "status": false, "check": false, "mcp": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "root command should have %s subcommand", name)
	}
}

func TestVersionCommand_Output(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	version, commit, date = "1.0.0", "abc123", "2025-01-01"
	defer func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	}()

	output, err := executeCommand(t, "", "version")
	require.NoError(t, err)

	assert.Contains(t, output, "stepwise 1.0.0")
	assert.Contains(t, output, "commit: abc123")
	assert.Contains(t, output, "built:  2025-01-01")
}

func TestFormatError(t *testing.T) {
	t.Run("plan error shows suggestion", func(t *testing.T) {
		err := &setup.PlanError{
			Code:       setup.ErrCodePlanNotFound,
			Message:    "plan file not found",
			Context:    "stepwise.yaml",
			Suggestion: "Create stepwise.yaml",
		}
		msg := formatError(err)
		assert.Contains(t, msg, "plan file not found (at stepwise.yaml)")
		assert.Contains(t, msg, "Suggestion: Create stepwise.yaml")
	})

	t.Run("step error shows suggestion", func(t *testing.T) {
		msg := formatError(sequence.NewCannotExecuteError(1, "tabs"))
		assert.Contains(t, msg, `step "tabs"`)
		assert.Contains(t, msg, "Suggestion:")
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", formatError(errors.New("boom")))
	})
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
