package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandResult_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, CommandResult{ExitCode: 0, Stdout: "ok"}.Success())
	assert.False(t, CommandResult{ExitCode: 1, Stderr: "boom"}.Success())
}
